package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
)

// OfferRepository is a PostgreSQL implementation of repository.OfferRepository.
type OfferRepository struct {
	q Querier
}

// NewOfferRepository creates a new PostgreSQL offer repository.
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{q: db}
}

// NewOfferRepositoryWithTx creates an offer repository using a transaction.
func NewOfferRepositoryWithTx(tx *sql.Tx) *OfferRepository {
	return &OfferRepository{q: tx}
}

const offerColumns = `id, order_id, driver_id, status, expires_at, rate_cents, notes, created_at, updated_at`

// CreateBatch inserts offers in a single statement, skipping rows that
// conflict on (order_id, driver_id). The conflict clause is what makes
// the two-window dispatch insert idempotent.
func (r *OfferRepository) CreateBatch(ctx context.Context, offers []*domain.DispatchOffer) (int64, error) {
	if len(offers) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO dispatch_offers (` + offerColumns + `) VALUES `)

	args := make([]any, 0, len(offers)*9)
	for i, offer := range offers {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 9
		sb.WriteString("(")
		for j := 1; j <= 9; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			sb.WriteString("$" + strconv.Itoa(base+j))
		}
		sb.WriteString(")")

		args = append(args,
			offer.ID,
			offer.OrderID,
			offer.DriverID,
			offer.Status,
			nullTime(offer.ExpiresAt),
			offer.RateCents,
			nullString(offer.Notes),
			offer.CreatedAt,
			offer.UpdatedAt,
		)
	}
	sb.WriteString(" ON CONFLICT (order_id, driver_id) DO NOTHING")

	result, err := r.q.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.DispatchOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM dispatch_offers WHERE id = $1`

	offer, err := scanOffer(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return offer, nil
}

// ListByOrder retrieves all offers for an order.
func (r *OfferRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.DispatchOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM dispatch_offers WHERE order_id = $1 ORDER BY created_at`
	return r.list(ctx, query, orderID)
}

// ListOpenByDriver retrieves the driver's OFFERED, unexpired offers.
func (r *OfferRepository) ListOpenByDriver(ctx context.Context, driverID string, now time.Time) ([]*domain.DispatchOffer, error) {
	query := `
		SELECT ` + offerColumns + ` FROM dispatch_offers
		WHERE driver_id = $1 AND status = $2 AND (expires_at IS NULL OR expires_at > $3)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, driverID, domain.OfferStatusOffered, now)
}

// UpdateStatusIf transitions the offer state in a single conditional
// write filtered by the expected prior state.
func (r *OfferRepository) UpdateStatusIf(ctx context.Context, id string, expected, to domain.OfferStatus) (bool, error) {
	query := `UPDATE dispatch_offers SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

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

// UpdateRate records the per-km rate the offer was settled at.
func (r *OfferRepository) UpdateRate(ctx context.Context, id string, rateCents int64) error {
	query := `UPDATE dispatch_offers SET rate_cents = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, rateCents, id)
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

// RejectOpenSiblings bulk-transitions every other OFFERED offer for the
// order to REJECTED.
func (r *OfferRepository) RejectOpenSiblings(ctx context.Context, orderID, winnerOfferID string) (int64, error) {
	query := `
		UPDATE dispatch_offers
		SET status = $1, updated_at = NOW()
		WHERE order_id = $2 AND id <> $3 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.OfferStatusRejected,
		orderID,
		winnerOfferID,
		domain.OfferStatusOffered,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SweepExpired bulk-transitions every OFFERED offer whose expiry has
// passed to TIMEOUT. Rows already transitioned out of OFFERED are not
// matched, which makes the sweep idempotent and safe to run concurrently
// with acceptance attempts.
func (r *OfferRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE dispatch_offers
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at <= $3
	`

	result, err := r.q.ExecContext(ctx, query, domain.OfferStatusTimeout, domain.OfferStatusOffered, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *OfferRepository) list(ctx context.Context, query string, args ...any) ([]*domain.DispatchOffer, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*domain.DispatchOffer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

func scanOffer(row scanTarget) (*domain.DispatchOffer, error) {
	var offer domain.DispatchOffer
	var rawStatus string
	var expiresAt sql.NullTime
	var notes sql.NullString

	err := row.Scan(
		&offer.ID,
		&offer.OrderID,
		&offer.DriverID,
		&rawStatus,
		&expiresAt,
		&offer.RateCents,
		&notes,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	offer.Status, err = domain.ParseOfferStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		offer.ExpiresAt = expiresAt.Time
	}
	if notes.Valid {
		offer.Notes = notes.String
	}

	return &offer, nil
}
