package storage

import (
	"context"
	"fmt"

	"finance-tracker/internal/models"
)

// CreateExpense inserts a record owned by userID. Ownership comes from the
// resolved session; this layer never sees a client-supplied user id.
func (db *DB) CreateExpense(ctx context.Context, userID int64, name string, amount models.Amount, date models.Date, category models.Category) (*models.Expense, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO expenses (user_id, name, amount_cents, date, category) VALUES (?, ?, ?, ?, ?)",
		userID, name, amount.Cents(), date.String(), string(category),
	)
	if err != nil {
		return nil, storeErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storeErr(err)
	}

	return &models.Expense{
		ID:       id,
		UserID:   userID,
		Name:     name,
		Amount:   amount,
		Date:     date,
		Category: category,
	}, nil
}

// ListExpensesByUser returns the caller's records ordered by date
// descending. A user with no records gets an empty slice, not an error.
func (db *DB) ListExpensesByUser(ctx context.Context, userID int64) ([]models.Expense, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, user_id, name, amount_cents, date, category FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, storeErr(rows.Err())
}

// CategoryTotal aggregates one category for a month.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Total    models.Amount   `json:"total"`
	Count    int             `json:"count"`
}

// GetCategoryTotalsByMonth sums the caller's records per category for the
// given month.
func (db *DB) GetCategoryTotalsByMonth(ctx context.Context, userID int64, year, month int) ([]CategoryTotal, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT category, SUM(amount_cents), COUNT(*)
		FROM expenses
		WHERE user_id = ? AND strftime('%Y', date) = ? AND strftime('%m', date) = ?
		GROUP BY category
		ORDER BY category
	`, userID, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	totals := []CategoryTotal{}
	for rows.Next() {
		var ct CategoryTotal
		var cat string
		var cents int64
		if err := rows.Scan(&cat, &cents, &ct.Count); err != nil {
			return nil, storeErr(err)
		}
		ct.Category = models.Category(cat)
		ct.Total = models.Amount(cents)
		totals = append(totals, ct)
	}

	return totals, storeErr(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (models.Expense, error) {
	var e models.Expense
	var cents int64
	var dateStr, category string
	if err := row.Scan(&e.ID, &e.UserID, &e.Name, &cents, &dateStr, &category); err != nil {
		return models.Expense{}, storeErr(err)
	}

	date, err := models.ParseDate(dateStr)
	if err != nil {
		return models.Expense{}, err
	}

	e.Amount = models.Amount(cents)
	e.Date = date
	e.Category = models.Category(category)
	return e, nil
}
