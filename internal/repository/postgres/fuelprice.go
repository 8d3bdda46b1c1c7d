package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fueldash/internal/repository"
)

// FuelPriceRepository is a PostgreSQL implementation of
// repository.FuelPriceRepository.
type FuelPriceRepository struct {
	q Querier
}

// NewFuelPriceRepository creates a new PostgreSQL fuel price repository.
func NewFuelPriceRepository(db *sql.DB) *FuelPriceRepository {
	return &FuelPriceRepository{q: db}
}

// GetActivePriceCents retrieves the driver's active per-litre price for
// the given fuel type, in minor currency units.
func (r *FuelPriceRepository) GetActivePriceCents(ctx context.Context, driverID, fuelTypeID string) (int64, error) {
	query := `
		SELECT price_per_litre_cents FROM driver_fuel_prices
		WHERE driver_id = $1 AND fuel_type_id = $2 AND active = TRUE
	`

	var price int64
	err := r.q.QueryRowContext(ctx, query, driverID, fuelTypeID).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return price, nil
}
