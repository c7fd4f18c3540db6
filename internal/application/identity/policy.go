package identity

import (
	"slices"

	"github.com/clubhouse/backend/internal/domain/identity"
)

// AdminPolicy decides who may perform tenant administration. The configured
// username list is consulted first; otherwise the stored flag must be true.
// A flag that was never set denies access.
type AdminPolicy struct {
	adminUsers []string
}

// NewAdminPolicy creates a policy granting admin to the given usernames
func NewAdminPolicy(adminUsers []string) *AdminPolicy {
	return &AdminPolicy{adminUsers: slices.Clone(adminUsers)}
}

// IsAdminUsername reports whether username is on the configured list
func (p *AdminPolicy) IsAdminUsername(username string) bool {
	if p == nil || username == "" {
		return false
	}
	return slices.Contains(p.adminUsers, username)
}

// IsAdmin reports whether user holds admin rights
func (p *AdminPolicy) IsAdmin(user *identity.User) bool {
	if user == nil {
		return false
	}
	return p.IsAdminUsername(user.Username) || user.Admin()
}
