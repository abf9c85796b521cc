package pricing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/domain/models"
)

// ErrInvalidSection indicates a section the organizer's school type does not submit.
var ErrInvalidSection = errors.New("invalid section for school type")

// Store is the slice of the persistence gateway the pricing service needs.
type Store interface {
	LoadPricing(ctx context.Context) (models.PricingTable, bool, error)
	SavePricing(ctx context.Context, table models.PricingTable) error
}

// Service exposes the portion/pricing table.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a pricing service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Table returns the saved table, or the defaults when none was saved.
func (s *Service) Table(ctx context.Context) (models.PricingTable, error) {
	table, found, err := s.store.LoadPricing(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	if !found {
		return models.DefaultPricingTable(), nil
	}
	if err := table.Validate(); err != nil {
		// Not wrapped: a stored table with gaps is a server fault, not a caller error.
		return nil, fmt.Errorf("stored pricing table is unusable: %v", err)
	}
	return table, nil
}

// Update validates and stores a replacement table.
func (s *Service) Update(ctx context.Context, table models.PricingTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	if err := s.store.SavePricing(ctx, table.Clone()); err != nil {
		return fmt.Errorf("save pricing: %w", err)
	}
	s.logger.Info("pricing table updated")
	return nil
}

// ForOrganizer picks the row that applies to a submission. Split schools pick
// by section, everyone else by their own school type.
func (s *Service) ForOrganizer(ctx context.Context, organizer models.Organizer, section models.Section) (models.PortionConfig, error) {
	tier, err := TierFor(organizer.SchoolType, section)
	if err != nil {
		return models.PortionConfig{}, err
	}
	table, err := s.Table(ctx)
	if err != nil {
		return models.PortionConfig{}, err
	}
	return table.For(tier)
}

// TierFor resolves which tier's row a section of a school type consumes.
func TierFor(schoolType models.SchoolType, section models.Section) (models.SchoolType, error) {
	if !schoolType.Valid() {
		return "", fmt.Errorf("%w %q", models.ErrUnknownSchoolType, schoolType)
	}
	if schoolType.Split() {
		switch section {
		case models.SectionPrimary:
			return models.SchoolPrimary, nil
		case models.SectionMiddle:
			return models.SchoolMiddle, nil
		}
		return "", fmt.Errorf("%w: %s schools report PRIMARY or MIDDLE, got %q", ErrInvalidSection, schoolType, section)
	}
	if section != models.SectionAll {
		return "", fmt.Errorf("%w: %s schools report ALL, got %q", ErrInvalidSection, schoolType, section)
	}
	return schoolType, nil
}
