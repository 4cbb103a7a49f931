package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/UnknownOlympus/metrica/internal/models"
)

// CreateOrder inserts the order and its optional payroll entry atomically.
// Either both rows are stored or neither is.
func (r *Repository) CreateOrder(ctx context.Context, order models.Order, entry *models.Payroll) (int64, int64, error) {
	if err := models.Validate(order); err != nil {
		return 0, 0, fmt.Errorf("failed to create order: %w", err)
	}

	var orderID, payrollID int64
	err := r.inTx(ctx, func(tx Database) error {
		var err error
		if orderID, err = insertOrder(ctx, tx, order); err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		linked := *entry
		linked.OrderID = orderID
		payrollID, err = insertPayroll(ctx, tx, linked)
		return err
	})
	if err != nil {
		return 0, 0, err
	}

	return orderID, payrollID, nil
}

func insertOrder(ctx context.Context, db Database, order models.Order) (int64, error) {
	var id int64
	var createdAt time.Time

	err := db.QueryRow(ctx, InsertOrderSQL,
		order.ClientName,
		order.Description,
		order.Date,
		order.EmployeeID,
		order.EmployeeName,
		order.IncomeValue,
		order.Status,
		order.ClientContact,
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	return id, nil
}

// ListOrdersByDate returns the orders registered for the given calendar day.
func (r *Repository) ListOrdersByDate(ctx context.Context, day time.Time) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, SelectOrdersByDateSQL, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, errScan := scanOrder(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", errScan)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order rows: %w", err)
	}

	return orders, nil
}

// GetOrder returns the order with the given id or ErrNotFound.
func (r *Repository) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, SelectOrderSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	return order, nil
}

// UpdateOrderStatus sets the status of an order.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: order status %q", models.ErrInvalid, status)
	}

	cmdTag, err := r.db.Exec(ctx, UpdateOrderStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order %d status: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteOrder removes an order together with its pending payroll.
// Orders whose payroll has already been paid are kept and ErrOrderLocked is returned.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx Database) error {
		if _, err := tx.Exec(ctx, DeletePendingPayrollByOrderSQL, id); err != nil {
			return fmt.Errorf("failed to delete payroll of order %d: %w", id, err)
		}

		cmdTag, err := tx.Exec(ctx, DeleteOrderSQL, id)
		if err != nil {
			return fmt.Errorf("failed to delete order %d: %w", id, err)
		}
		if cmdTag.RowsAffected() == 1 {
			return nil
		}

		var exists bool
		if err = tx.QueryRow(ctx, OrderExistsSQL, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order %d: %w", id, err)
		}
		if exists {
			return ErrOrderLocked
		}
		return ErrNotFound
	})
}

// CountOrdersByDay returns how many orders each day in [from, to] has. Days without orders are absent.
func (r *Repository) CountOrdersByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := r.db.Query(ctx, SelectOrderDaysSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query order days: %w", err)
	}
	defer rows.Close()

	days := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var count int
		if errScan := rows.Scan(&day, &count); errScan != nil {
			return nil, fmt.Errorf("failed to scan order day: %w", errScan)
		}
		days[day.Format(models.DateLayout)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order days: %w", err)
	}

	return days, nil
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID, &order.ClientName, &order.Description, &order.Date, &order.EmployeeID,
		&order.EmployeeName, &order.IncomeValue, &order.Status, &order.ClientContact, &order.CreatedAt,
	)
	return order, err
}
