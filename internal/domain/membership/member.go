// Package membership holds the per-tenant business entities of a club:
// members, their levels and locations, price list entries and payments.
package membership

import (
	"strings"
	"time"

	"github.com/clubhouse/backend/internal/domain/shared"
)

// MemberStatus is the lifecycle state of a member
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusInactive  MemberStatus = "inactive"
	MemberStatusBanned    MemberStatus = "banned"
	MemberStatusSuspended MemberStatus = "suspended"
)

// MemberStatuses lists every status in display order
var MemberStatuses = []MemberStatus{
	MemberStatusActive, MemberStatusInactive, MemberStatusBanned, MemberStatusSuspended,
}

// Sex of a member
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// Sexes lists every sex value in display order
var Sexes = []Sex{SexMale, SexFemale, SexOther}

// DateLayout is the wire and form format for dates of birth
const DateLayout = "2006-01-02"

// Member errors
var (
	ErrMemberNotFound = shared.NewDomainError("NOT_FOUND", "Member not found")
	ErrInvalidSex     = shared.NewDomainError("INVALID_SEX", "Invalid sex value")
	ErrInvalidStatus  = shared.NewDomainError("INVALID_STATUS", "Invalid status value")
	ErrInvalidDate    = shared.NewDomainError("INVALID_DATE", "Invalid date_of_birth value")
	ErrNameRequired   = shared.NewDomainError("NAME_REQUIRED", "Name is required")
)

// ParseMemberStatus validates s. Empty input returns the default active status.
func ParseMemberStatus(s string) (MemberStatus, error) {
	if s == "" {
		return MemberStatusActive, nil
	}
	for _, v := range MemberStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", ErrInvalidStatus
}

// ParseSex validates s. Empty input is allowed and means unknown.
func ParseSex(s string) (Sex, error) {
	if s == "" {
		return "", nil
	}
	for _, v := range Sexes {
		if string(v) == s {
			return v, nil
		}
	}
	return "", ErrInvalidSex
}

// ParseDate parses a YYYY-MM-DD date. Empty input returns nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}

// Member is a person registered with the club
type Member struct {
	ID          int64
	Name        string
	Surname     string
	DateOfBirth *time.Time
	Sex         Sex
	Status      MemberStatus
	LevelID     *int64
	LocationID  *int64
}

// FullName returns "Name Surname"
func (m *Member) FullName() string {
	return strings.TrimSpace(m.Name + " " + m.Surname)
}

// MemberFilter narrows member listings. Nil fields do not filter.
type MemberFilter struct {
	// Query matches name or surname, case-insensitive substring
	Query      string
	LevelID    *int64
	LocationID *int64
	Status     *MemberStatus
	Sex        *Sex
}
