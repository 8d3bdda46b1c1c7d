package repository

import "context"

// FuelPriceRepository reads driver-specific per-litre fuel prices.
// A missing active price for a (driver, fuel type) pair is reported via
// ErrNotFound; pricing policy for that case lives in the service layer.
type FuelPriceRepository interface {
	// GetActivePriceCents retrieves the active per-litre price, in minor
	// currency units, set by the driver for the given fuel type.
	GetActivePriceCents(ctx context.Context, driverID, fuelTypeID string) (int64, error)
}
