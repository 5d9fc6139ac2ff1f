package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

// TransactionRepository provides database access to engagement rows.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository constructs the repository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByWindow returns one cast's engagements with timestamps in
// [from, to), oldest first. Cancelled and no-show rows are included; the
// aggregation splits them out.
func (r *TransactionRepository) ListByWindow(ctx context.Context, castID string, from, to time.Time) ([]models.TransactionRecord, error) {
	const query = `SELECT id, cast_id, customer_id, datetime, price, cast_payout, disposition, package,
       priority_booking, start_time, end_time, add_ons, add_on_price, discounts, discount_amount, created_at
FROM transactions WHERE cast_id = $1 AND datetime >= $2 AND datetime < $3 ORDER BY datetime ASC`
	var rows []models.TransactionRecord
	if err := r.db.SelectContext(ctx, &rows, query, castID, from, to); err != nil {
		return nil, fmt.Errorf("list transactions window: %w", err)
	}
	return rows, nil
}

// FirstVisits returns, per customer, the timestamp of that customer's
// first-ever non-lost engagement with the cast, across all history. The
// aggregation needs this to tell a genuinely new customer from one merely
// first seen inside a window.
func (r *TransactionRepository) FirstVisits(ctx context.Context, castID string) (map[string]time.Time, error) {
	const query = `SELECT customer_id, MIN(datetime) AS first_visit
FROM transactions
WHERE cast_id = $1 AND customer_id IS NOT NULL AND customer_id <> ''
  AND disposition NOT IN ('cancelled', 'no_show')
GROUP BY customer_id`

	rows := []struct {
		CustomerID string    `db:"customer_id"`
		FirstVisit time.Time `db:"first_visit"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, castID); err != nil {
		return nil, fmt.Errorf("first visits: %w", err)
	}

	visits := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		visits[row.CustomerID] = row.FirstVisit
	}
	return visits, nil
}
