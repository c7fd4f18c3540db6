package membership

import (
	"context"
	"strconv"
	"strings"

	"github.com/clubhouse/backend/internal/domain/membership"
	"go.uber.org/zap"
)

// SettingsService manages the tenant's levels, locations and price list
type SettingsService struct {
	levels    membership.LevelRepository
	locations membership.LocationRepository
	prices    membership.PriceRepository
	scope     TransactionScope
	logger    *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	levels membership.LevelRepository,
	locations membership.LocationRepository,
	prices membership.PriceRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *SettingsService {
	return &SettingsService{
		levels:    levels,
		locations: locations,
		prices:    prices,
		scope:     scope,
		logger:    logger,
	}
}

// Overview lists levels by rank, locations by name and prices by amount
func (s *SettingsService) Overview(ctx context.Context) (*SettingsOverview, error) {
	out := &SettingsOverview{}
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		levels, err := s.levels.ListByRank(ctx)
		if err != nil {
			return err
		}
		locations, err := s.locations.ListByName(ctx)
		if err != nil {
			return err
		}
		prices, err := s.prices.ListByAmount(ctx)
		if err != nil {
			return err
		}

		out.Levels = make([]LevelResponse, len(levels))
		for i, l := range levels {
			out.Levels[i] = LevelResponse{ID: l.ID, Name: l.Name, Rank: l.Rank}
		}
		out.Locations = make([]LocationResponse, len(locations))
		for i, l := range locations {
			out.Locations[i] = LocationResponse{ID: l.ID, Name: l.Name}
		}
		out.Prices = make([]PriceResponse, len(prices))
		for i, p := range prices {
			out.Prices[i] = PriceResponse{ID: p.ID, Amount: p.Amount, Description: p.Description}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Levels

func parseLevel(in LevelInput) (*membership.Level, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, membership.ErrLevelNameRequired
	}
	rank, err := strconv.Atoi(strings.TrimSpace(in.Rank))
	if err != nil {
		return nil, membership.ErrLevelRankInvalid
	}
	return membership.NewLevel(in.Name, rank)
}

// GetLevel returns a level or ErrLevelNotFound
func (s *SettingsService) GetLevel(ctx context.Context, id int64) (*LevelResponse, error) {
	l, err := s.levels.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LevelResponse{ID: l.ID, Name: l.Name, Rank: l.Rank}, nil
}

// CreateLevel adds a level; duplicate names return ErrLevelExists
func (s *SettingsService) CreateLevel(ctx context.Context, in LevelInput) (*LevelResponse, error) {
	l, err := parseLevel(in)
	if err != nil {
		return nil, err
	}
	if err := s.levels.Create(ctx, l); err != nil {
		return nil, err
	}
	s.logger.Info("Level created", zap.Int64("level_id", l.ID), zap.String("name", l.Name))
	return &LevelResponse{ID: l.ID, Name: l.Name, Rank: l.Rank}, nil
}

// UpdateLevel renames or re-ranks a level
func (s *SettingsService) UpdateLevel(ctx context.Context, id int64, in LevelInput) (*LevelResponse, error) {
	next, err := parseLevel(in)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(ctx context.Context) error {
		l, err := s.levels.FindByID(ctx, id)
		if err != nil {
			return err
		}
		l.Name, l.Rank = next.Name, next.Rank
		return s.levels.Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return &LevelResponse{ID: id, Name: next.Name, Rank: next.Rank}, nil
}

// DeleteLevel removes a level that no member references
func (s *SettingsService) DeleteLevel(ctx context.Context, id int64) error {
	if err := s.levels.DeleteUnused(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Level deleted", zap.Int64("level_id", id))
	return nil
}

// Locations

// GetLocation returns a location or ErrLocationNotFound
func (s *SettingsService) GetLocation(ctx context.Context, id int64) (*LocationResponse, error) {
	l, err := s.locations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LocationResponse{ID: l.ID, Name: l.Name}, nil
}

// CreateLocation adds a location; duplicate names return ErrLocationExists
func (s *SettingsService) CreateLocation(ctx context.Context, in LocationInput) (*LocationResponse, error) {
	l, err := membership.NewLocation(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	s.logger.Info("Location created", zap.Int64("location_id", l.ID), zap.String("name", l.Name))
	return &LocationResponse{ID: l.ID, Name: l.Name}, nil
}

// UpdateLocation renames a location
func (s *SettingsService) UpdateLocation(ctx context.Context, id int64, in LocationInput) (*LocationResponse, error) {
	next, err := membership.NewLocation(in.Name)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(ctx context.Context) error {
		l, err := s.locations.FindByID(ctx, id)
		if err != nil {
			return err
		}
		l.Name = next.Name
		return s.locations.Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return &LocationResponse{ID: id, Name: next.Name}, nil
}

// DeleteLocation removes a location that no member references
func (s *SettingsService) DeleteLocation(ctx context.Context, id int64) error {
	if err := s.locations.DeleteUnused(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Location deleted", zap.Int64("location_id", id))
	return nil
}

// Prices

func parsePrice(in PriceInput) (*membership.PaymentPrice, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, membership.ErrPriceDescriptionMissing
	}
	amount, err := membership.ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	return membership.NewPaymentPrice(amount, in.Description)
}

// GetPrice returns a price or ErrPriceNotFound
func (s *SettingsService) GetPrice(ctx context.Context, id int64) (*PriceResponse, error) {
	p, err := s.prices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PriceResponse{ID: p.ID, Amount: p.Amount, Description: p.Description}, nil
}

// CreatePrice adds a price list entry
func (s *SettingsService) CreatePrice(ctx context.Context, in PriceInput) (*PriceResponse, error) {
	p, err := parsePrice(in)
	if err != nil {
		return nil, err
	}
	if err := s.prices.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Price created", zap.Int64("price_id", p.ID), zap.String("amount", p.Amount.StringFixed(2)))
	return &PriceResponse{ID: p.ID, Amount: p.Amount, Description: p.Description}, nil
}

// UpdatePrice changes a price's amount or description. Recorded payments
// keep the amount they were charged.
func (s *SettingsService) UpdatePrice(ctx context.Context, id int64, in PriceInput) (*PriceResponse, error) {
	next, err := parsePrice(in)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(ctx context.Context) error {
		p, err := s.prices.FindByID(ctx, id)
		if err != nil {
			return err
		}
		p.Amount, p.Description = next.Amount, next.Description
		return s.prices.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return &PriceResponse{ID: id, Amount: next.Amount, Description: next.Description}, nil
}

// DeletePrice removes a price that no payment references
func (s *SettingsService) DeletePrice(ctx context.Context, id int64) error {
	if err := s.prices.DeleteUnused(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Price deleted", zap.Int64("price_id", id))
	return nil
}
