package repository

const InsertOrderSQL = `
INSERT INTO orders (client_name, description, order_date, employee_id, employee_name, income_value, status, client_contact)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at;
`

const SelectOrdersByDateSQL = `
SELECT id, client_name, description, order_date, employee_id, employee_name, income_value, status, client_contact, created_at
FROM orders
WHERE order_date = $1
ORDER BY created_at;
`

const InsertEmployeeSQL = `
INSERT INTO employees (name, phone, payment_method, payment_value, date_started, email, status, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at;
`

const SelectEmployeesByStatusSQL = `
SELECT id, name, phone, payment_method, payment_value, date_started, email, status, notes, created_at
FROM employees
WHERE status = $1
ORDER BY name;
`

const SelectEmployeeSQL = `
SELECT id, name, phone, payment_method, payment_value, date_started, email, status, notes, created_at
FROM employees
WHERE id = $1;
`

const UpdateEmployeeStatusSQL = `UPDATE employees SET status = $2 WHERE id = $1;`

const InsertPayrollSQL = `
INSERT INTO payroll (employee_id, employee_name, order_id, order_date, order_value, payment_percent, calculated_amount, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at;
`

const SelectPayrollSQL = `
SELECT id, employee_id, employee_name, order_id, order_date, order_value, payment_percent, calculated_amount, status, paid_at, created_at
FROM payroll
WHERE id = $1;
`

// UpdatePayrollStatusSQL only changes the row while it is still in the expected status.
const UpdatePayrollStatusSQL = `
UPDATE payroll
SET status = $3, paid_at = CASE WHEN $3 = 'paid' THEN now() END
WHERE id = $1 AND status = $2;
`

const SelectPayrollByStatusSQL = `
SELECT id, employee_id, employee_name, order_id, order_date, order_value, payment_percent, calculated_amount, status, paid_at, created_at
FROM payroll
WHERE status = $1
ORDER BY order_date DESC, id DESC
LIMIT $2 OFFSET $3;
`

const PayrollSummarySQL = `
SELECT
    employee_id,
    employee_name,
    count(*) AS "entries",
    COALESCE(sum(calculated_amount), 0) AS "total",
    COALESCE(sum(calculated_amount) FILTER (WHERE status = 'pending'), 0) AS "pending_total",
    min(order_date) AS "first_order",
    max(order_date) AS "last_order"
FROM
    payroll
GROUP BY
    employee_id, employee_name
ORDER BY
    "total" DESC;
`

const InsertTransactionSQL = `
INSERT INTO transactions (type, value, description, source, order_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at;
`

const SelectTransactionsByTypeSQL = `
SELECT id, type, value, description, source, order_id, created_at
FROM transactions
WHERE type = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;
`

const TransactionTotalsSQL = `
SELECT
    COALESCE(sum(value) FILTER (WHERE type = 'income'), 0) AS "income",
    COALESCE(sum(value) FILTER (WHERE type = 'expense'), 0) AS "expense"
FROM transactions;
`

const SelectOrderSQL = `
SELECT id, client_name, description, order_date, employee_id, employee_name, income_value, status, client_contact, created_at
FROM orders
WHERE id = $1;
`

const UpdateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1;`

const DeletePendingPayrollByOrderSQL = `DELETE FROM payroll WHERE order_id = $1 AND status = 'pending';`

// DeleteOrderSQL refuses orders that still have payroll attached, i.e. paid entries.
const DeleteOrderSQL = `
DELETE FROM orders
WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM payroll WHERE order_id = $1);
`

const OrderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1);`

const SelectOrderDaysSQL = `
SELECT order_date, count(*) AS "orders"
FROM orders
WHERE order_date BETWEEN $1 AND $2
GROUP BY order_date
ORDER BY order_date;
`

const CountEmployeesSQL = `SELECT count(*) FROM employees WHERE status = $1;`
