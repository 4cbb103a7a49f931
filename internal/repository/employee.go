package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/jackc/pgx/v5"
)

// CreateEmployee validates and stores a new employee and returns its id.
func (r *Repository) CreateEmployee(ctx context.Context, employee models.Employee) (int64, error) {
	if err := models.Validate(employee); err != nil {
		return 0, fmt.Errorf("failed to create employee: %w", err)
	}

	var id int64
	err := r.db.QueryRow(ctx, InsertEmployeeSQL,
		employee.Name,
		employee.Phone,
		employee.PaymentMethod,
		employee.PaymentValue,
		employee.DateStarted,
		employee.Email,
		employee.Status,
		employee.Notes,
	).Scan(&id, &employee.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert employee: %w", err)
	}

	return id, nil
}

// GetEmployee returns the employee with the given id or ErrNotFound.
func (r *Repository) GetEmployee(ctx context.Context, id int64) (models.Employee, error) {
	employee, err := scanEmployee(r.db.QueryRow(ctx, SelectEmployeeSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to get employee %d: %w", id, err)
	}

	return employee, nil
}

// ListEmployees returns the employees with the given status ordered by name.
func (r *Repository) ListEmployees(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error) {
	rows, err := r.db.Query(ctx, SelectEmployeesByStatusSQL, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		employee, errScan := scanEmployee(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", errScan)
		}
		employees = append(employees, employee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employee rows: %w", err)
	}

	return employees, nil
}

// CountEmployees returns the number of employees with the given status.
func (r *Repository) CountEmployees(ctx context.Context, status models.EmployeeStatus) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, CountEmployeesSQL, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}

	return count, nil
}

// UpdateEmployeeStatus activates or deactivates an employee.
func (r *Repository) UpdateEmployeeStatus(ctx context.Context, id int64, status models.EmployeeStatus) error {
	cmdTag, err := r.db.Exec(ctx, UpdateEmployeeStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("failed to update employee %d status: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var employee models.Employee
	err := row.Scan(
		&employee.ID, &employee.Name, &employee.Phone, &employee.PaymentMethod, &employee.PaymentValue,
		&employee.DateStarted, &employee.Email, &employee.Status, &employee.Notes, &employee.CreatedAt,
	)
	return employee, err
}
