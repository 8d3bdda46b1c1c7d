package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, COALESCE(name, ''), COALESCE(phone, ''), availability_status, premium_status, compliance_status`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, availability_status, premium_status, compliance_status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.Phone, driver.Availability, driver.Premium, driver.Compliance)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return scanDriver(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`
	return scanDriver(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY id`
	return r.list(ctx, query)
}

// ListEligible retrieves drivers that may receive dispatch offers.
func (r *DriverRepository) ListEligible(ctx context.Context) ([]*domain.Driver, error) {
	query := `
		SELECT ` + driverColumns + ` FROM drivers
		WHERE availability_status = $1 AND compliance_status = $2
		ORDER BY id
	`
	return r.list(ctx, query, domain.DriverAvailable, domain.ComplianceApproved)
}

// UpdateAvailability updates the availability of a driver.
func (r *DriverRepository) UpdateAvailability(ctx context.Context, id string, availability domain.DriverAvailability) error {
	query := `UPDATE drivers SET availability_status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, availability, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DriverRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Driver, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := rows.Scan(&driver.ID, &driver.Name, &driver.Phone,
			&driver.Availability, &driver.Premium, &driver.Compliance); err != nil {
			return nil, err
		}
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

func scanDriver(row *sql.Row) (*domain.Driver, error) {
	var driver domain.Driver
	err := row.Scan(&driver.ID, &driver.Name, &driver.Phone,
		&driver.Availability, &driver.Premium, &driver.Compliance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}
