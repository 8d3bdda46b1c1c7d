package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

const orderColumns = `id, customer_id, fuel_type_id, litres, drop_lat, drop_lng, status, assigned_driver_id, fuel_cost_cents, delivery_fee_cents, service_fee_cents, total_cents, confirmed_delivery_time, cancelled_at, cancel_reason, created_at, updated_at`

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.FuelTypeID,
		order.Litres,
		order.DropLat,
		order.DropLng,
		order.Status,
		nullString(order.AssignedDriverID),
		order.FuelCostCents,
		order.DeliveryFeeCents,
		order.ServiceFeeCents,
		order.TotalCents,
		nullTime(order.ConfirmedDeliveryTime),
		nullTime(order.CancelledAt),
		nullString(order.CancelReason),
		order.CreatedAt,
		order.UpdatedAt,
	)

	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetAll retrieves recent orders.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// AssignDriverIf transitions the order to ASSIGNED in a single
// compare-and-swap write filtered by the expected prior state. A zero
// row count means another request won the race.
func (r *OrderRepository) AssignDriverIf(ctx context.Context, id string, driverID string, deliveryTime time.Time, expected domain.OrderStatus) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, assigned_driver_id = $2, confirmed_delivery_time = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.OrderStatusAssigned,
		driverID,
		nullTime(deliveryTime),
		id,
		expected,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// RevertAssignment rolls an ASSIGNED order back to its prior state,
// clearing the driver and confirmed delivery time.
func (r *OrderRepository) RevertAssignment(ctx context.Context, id string, to domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, assigned_driver_id = NULL, confirmed_delivery_time = NULL, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, to, id, domain.OrderStatusAssigned)
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

// UpdateStatusIf transitions the order state conditionally on the
// expected prior state.
func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id string, expected, to domain.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, expected)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// Cancel conditionally cancels the order, recording when and why. The
// driver assignment is cleared so a cancelled order never names a driver.
func (r *OrderRepository) Cancel(ctx context.Context, id string, expected domain.OrderStatus, at time.Time, reason string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, cancelled_at = $2, cancel_reason = $3, assigned_driver_id = NULL, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.OrderStatusCancelled,
		at,
		nullString(reason),
		id,
		expected,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// UpdatePricing persists the computed pricing fields on the order.
func (r *OrderRepository) UpdatePricing(ctx context.Context, id string, pricing repository.OrderPricing) error {
	query := `
		UPDATE orders
		SET fuel_cost_cents = $1, delivery_fee_cents = $2, service_fee_cents = $3, total_cents = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		pricing.FuelCostCents,
		pricing.DeliveryFeeCents,
		pricing.ServiceFeeCents,
		pricing.TotalCents,
		id,
	)
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

// scanTarget is satisfied by both *sql.Row and *sql.Rows.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanOrder(row scanTarget) (*domain.Order, error) {
	var order domain.Order
	var rawStatus string
	var assignedDriverID, cancelReason sql.NullString
	var confirmedDeliveryTime, cancelledAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.FuelTypeID,
		&order.Litres,
		&order.DropLat,
		&order.DropLng,
		&rawStatus,
		&assignedDriverID,
		&order.FuelCostCents,
		&order.DeliveryFeeCents,
		&order.ServiceFeeCents,
		&order.TotalCents,
		&confirmedDeliveryTime,
		&cancelledAt,
		&cancelReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status, err = domain.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	if assignedDriverID.Valid {
		order.AssignedDriverID = assignedDriverID.String
	}
	if confirmedDeliveryTime.Valid {
		order.ConfirmedDeliveryTime = confirmedDeliveryTime.Time
	}
	if cancelledAt.Valid {
		order.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		order.CancelReason = cancelReason.String
	}

	return &order, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
