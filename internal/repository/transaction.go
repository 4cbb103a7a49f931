package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/metrica/internal/models"
)

// CreateTransaction validates and stores an income or expense record.
func (r *Repository) CreateTransaction(ctx context.Context, txn models.Transaction) (int64, error) {
	if err := models.Validate(txn); err != nil {
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}

	var id int64
	err := r.db.QueryRow(ctx, InsertTransactionSQL,
		txn.Type, txn.Value, txn.Description, txn.Source, txn.OrderID,
	).Scan(&id, &txn.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return id, nil
}

// ListTransactions returns a page of transactions of the given type, newest first.
func (r *Repository) ListTransactions(
	ctx context.Context, kind models.TransactionType, limit, offset int,
) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, SelectTransactionsByTypeSQL, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if errScan := rows.Scan(
			&txn.ID, &txn.Type, &txn.Value, &txn.Description, &txn.Source, &txn.OrderID, &txn.CreatedAt,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", errScan)
		}
		txns = append(txns, txn)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}

	return txns, nil
}

// Totals sums all income and expense transactions.
func (r *Repository) Totals(ctx context.Context) (models.Totals, error) {
	var totals models.Totals
	if err := r.db.QueryRow(ctx, TransactionTotalsSQL).Scan(&totals.Income, &totals.Expense); err != nil {
		return models.Totals{}, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return totals, nil
}
