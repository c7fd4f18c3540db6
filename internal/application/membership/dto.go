package membership

import (
	"time"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/shopspring/decimal"
)

// Page sizes of the two member listings
const (
	HTMLMembersPerPage = 12
	APIMembersPerPage  = 25
)

// MemberListQuery carries raw list parameters. Filter values that do not
// parse are ignored rather than rejected.
type MemberListQuery struct {
	Page     int
	PerPage  int
	Query    string
	Level    string
	Location string
	Status   string
	Sex      string
	Sort     string
	Order    string
}

// MemberResponse is a member as shown to clients
type MemberResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Sex         string `json:"sex,omitempty"`
	Status      string `json:"status"`
	LevelID     *int64 `json:"level_id"`
	LocationID  *int64 `json:"location_id"`
}

// FullName joins name and surname
func (m MemberResponse) FullName() string {
	return (&membership.Member{Name: m.Name, Surname: m.Surname}).FullName()
}

func toMemberResponse(m *membership.Member) MemberResponse {
	resp := MemberResponse{
		ID:         m.ID,
		Name:       m.Name,
		Surname:    m.Surname,
		Sex:        string(m.Sex),
		Status:     string(m.Status),
		LevelID:    m.LevelID,
		LocationID: m.LocationID,
	}
	if m.DateOfBirth != nil {
		resp.DateOfBirth = m.DateOfBirth.Format(membership.DateLayout)
	}
	return resp
}

// MemberInput is a full member form. Empty optional strings clear the field.
type MemberInput struct {
	Name        string
	Surname     string
	DateOfBirth string
	Sex         string
	Status      string
	LevelID     *int64
	LocationID  *int64
}

// OptionalID is a reference that may be absent from a partial update, or
// present and explicitly null
type OptionalID struct {
	Set   bool
	Value *int64
}

// MemberPatch updates only the fields that are set
type MemberPatch struct {
	Name        *string
	Surname     *string
	DateOfBirth *string
	Sex         *string
	Status      *string
	LevelID     OptionalID
	LocationID  OptionalID
}

// LevelInput is the level form
type LevelInput struct {
	Name string
	Rank string
}

// LocationInput is the location form
type LocationInput struct {
	Name string
}

// PriceInput is the price form. Amount accepts a comma decimal separator.
type PriceInput struct {
	Amount      string
	Description string
}

// LevelResponse is a level as shown to clients
type LevelResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// LocationResponse is a location as shown to clients
type LocationResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PriceResponse is a price list entry as shown to clients
type PriceResponse struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// SettingsOverview is everything the settings page lists
type SettingsOverview struct {
	Levels    []LevelResponse
	Locations []LocationResponse
	Prices    []PriceResponse
}

// LevelNames maps level ids to names for list rendering
func (o *SettingsOverview) LevelNames() map[int64]string {
	names := make(map[int64]string, len(o.Levels))
	for _, l := range o.Levels {
		names[l.ID] = l.Name
	}
	return names
}

// LocationNames maps location ids to names for list rendering
func (o *SettingsOverview) LocationNames() map[int64]string {
	names := make(map[int64]string, len(o.Locations))
	for _, l := range o.Locations {
		names[l.ID] = l.Name
	}
	return names
}

// RecordPaymentInput records one period's payment. PriceID takes precedence
// over Amount.
type RecordPaymentInput struct {
	MemberID int64
	Period   string
	PriceID  *int64
	Amount   *decimal.Decimal
}

// PaymentResponse is a payment as shown to clients
type PaymentResponse struct {
	ID       int64           `json:"id"`
	MemberID int64           `json:"member_id"`
	PriceID  *int64          `json:"price_id"`
	Period   string          `json:"period"`
	Amount   decimal.Decimal `json:"amount"`
	PaidAt   time.Time       `json:"paid_at"`
}

func toPaymentResponse(p *membership.Payment) PaymentResponse {
	return PaymentResponse{
		ID:       p.ID,
		MemberID: p.MemberID,
		PriceID:  p.PriceID,
		Period:   p.Period,
		Amount:   p.Amount,
		PaidAt:   p.PaidAt,
	}
}
