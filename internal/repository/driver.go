package repository

import (
	"context"

	"fueldash/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// ListEligible retrieves drivers that may receive dispatch offers:
	// AVAILABLE and compliance-approved.
	ListEligible(ctx context.Context) ([]*domain.Driver, error)

	// UpdateAvailability updates the availability of a driver.
	UpdateAvailability(ctx context.Context, id string, availability domain.DriverAvailability) error
}
