package membership

import (
	"strings"

	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Settings errors. Codes double as translation key suffixes.
var (
	ErrLocationNameRequired    = shared.NewDomainError("LOCATION_NAME_REQUIRED", "Location name is required")
	ErrLocationExists          = shared.NewDomainError("LOCATION_EXISTS", "Location already exists")
	ErrLocationInUse           = shared.NewDomainError("LOCATION_IN_USE", "Location is assigned to members")
	ErrLevelNameRequired       = shared.NewDomainError("LEVEL_NAME_REQUIRED", "Level name is required")
	ErrLevelRankInvalid        = shared.NewDomainError("LEVEL_RANK_INVALID", "Level rank must be an integer")
	ErrLevelExists             = shared.NewDomainError("LEVEL_EXISTS", "Level already exists")
	ErrLevelInUse              = shared.NewDomainError("LEVEL_IN_USE", "Level is assigned to members")
	ErrPriceDescriptionMissing = shared.NewDomainError("PRICE_DESCRIPTION_REQUIRED", "Price description is required")
	ErrPriceAmountInvalid      = shared.NewDomainError("PRICE_AMOUNT_INVALID", "Price amount must be a non-negative number")
	ErrPriceExists             = shared.NewDomainError("PRICE_EXISTS", "Price already exists")
	ErrPriceInUse              = shared.NewDomainError("PRICE_IN_USE", "Price is referenced by payments")

	ErrLevelNotFound    = shared.NewDomainError("NOT_FOUND", "Level not found")
	ErrLocationNotFound = shared.NewDomainError("NOT_FOUND", "Location not found")
)

// Level is a membership grade, ordered by Rank
type Level struct {
	ID   int64
	Name string
	Rank int
}

// NewLevel validates and builds a level
func NewLevel(name string, rank int) (*Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLevelNameRequired
	}
	return &Level{Name: name, Rank: rank}, nil
}

// Location is a venue where members train
type Location struct {
	ID   int64
	Name string
}

// NewLocation validates and builds a location
func NewLocation(name string) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLocationNameRequired
	}
	return &Location{Name: name}, nil
}

// PaymentPrice is an entry in the club's price list
type PaymentPrice struct {
	ID          int64
	Amount      decimal.Decimal
	Description string
}

// NewPaymentPrice validates and builds a price list entry
func NewPaymentPrice(amount decimal.Decimal, description string) (*PaymentPrice, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrPriceDescriptionMissing
	}
	if amount.IsNegative() {
		return nil, ErrPriceAmountInvalid
	}
	return &PaymentPrice{Amount: amount.Round(2), Description: description}, nil
}

// ParseAmount parses a decimal amount as typed into a form, accepting a comma separator
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, ErrPriceAmountInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrPriceAmountInvalid
	}
	return d, nil
}
