package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (restaurant_id, table_id, order_number, customer_name, customer_phone, status, total_amount, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, restaurant_id, table_id, order_number, customer_name, customer_phone, status, total_amount, notes, created_at, updated_at
`

type CreateOrderParams struct {
	RestaurantID  uuid.UUID
	TableID       uuid.UUID
	OrderNumber   string
	CustomerName  pgtype.Text
	CustomerPhone pgtype.Text
	Status        string
	TotalAmount   pgtype.Numeric
	Notes         pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.RestaurantID, arg.TableID, arg.OrderNumber, arg.CustomerName,
		arg.CustomerPhone, arg.Status, arg.TotalAmount, arg.Notes)
	var o Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.OrderNumber,
		&o.CustomerName, &o.CustomerPhone, &o.Status, &o.TotalAmount,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, customizations, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, menu_item_id, quantity, unit_price, customizations, notes, created_at
`

type CreateOrderItemParams struct {
	OrderID        uuid.UUID
	MenuItemID     uuid.UUID
	Quantity       int32
	UnitPrice      pgtype.Numeric
	Customizations []SelectedCustomization
	Notes          pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	if arg.Customizations == nil {
		arg.Customizations = []SelectedCustomization{}
	}
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.Quantity, arg.UnitPrice,
		arg.Customizations, arg.Notes)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.Quantity,
		&i.UnitPrice, &i.Customizations, &i.Notes, &i.CreatedAt)
	return i, err
}

const getOrder = `
SELECT id, restaurant_id, table_id, order_number, customer_name, customer_phone, status, total_amount, notes, created_at, updated_at
FROM orders
WHERE id = $1 AND restaurant_id = $2
`

type GetOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, arg.ID, arg.RestaurantID)
	var o Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.OrderNumber,
		&o.CustomerName, &o.CustomerPhone, &o.Status, &o.TotalAmount,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const listOrders = `
SELECT id, restaurant_id, table_id, order_number, customer_name, customer_phone, status, total_amount, notes, created_at, updated_at
FROM orders
WHERE restaurant_id = $1
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type ListOrdersParams struct {
	RestaurantID uuid.UUID
	Status       pgtype.Text
	Limit        int32
	Offset       int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.RestaurantID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.OrderNumber,
			&o.CustomerName, &o.CustomerPhone, &o.Status, &o.TotalAmount,
			&o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOrderItemsByOrder = `
SELECT id, order_id, menu_item_id, quantity, unit_price, customizations, notes, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.Quantity,
			&i.UnitPrice, &i.Customizations, &i.Notes, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $1, updated_at = now()
WHERE id = $2 AND restaurant_id = $3 AND status NOT IN ('completed', 'cancelled')
RETURNING id, restaurant_id, table_id, order_number, customer_name, customer_phone, status, total_amount, notes, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	Status       string
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// UpdateOrderStatus enforces the terminal-state lock atomically: the row
// only changes while the current status is non-terminal. pgx.ErrNoRows
// means the order is missing, foreign, or already terminal.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.Status, arg.ID, arg.RestaurantID)
	var o Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.OrderNumber,
		&o.CustomerName, &o.CustomerPhone, &o.Status, &o.TotalAmount,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const countOrdersSince = `
SELECT count(*) FROM orders
WHERE restaurant_id = $1 AND created_at >= $2
`

type CountOrdersSinceParams struct {
	RestaurantID uuid.UUID
	Since        time.Time
}

func (q *Queries) CountOrdersSince(ctx context.Context, arg CountOrdersSinceParams) (int64, error) {
	row := q.db.QueryRow(ctx, countOrdersSince, arg.RestaurantID, arg.Since)
	var n int64
	err := row.Scan(&n)
	return n, err
}

const sumCompletedRevenueSince = `
SELECT COALESCE(sum(total_amount), 0) FROM orders
WHERE restaurant_id = $1 AND status = 'completed' AND created_at >= $2
`

type SumCompletedRevenueSinceParams struct {
	RestaurantID uuid.UUID
	Since        time.Time
}

func (q *Queries) SumCompletedRevenueSince(ctx context.Context, arg SumCompletedRevenueSinceParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumCompletedRevenueSince, arg.RestaurantID, arg.Since)
	var n pgtype.Numeric
	err := row.Scan(&n)
	return n, err
}

const countOrdersByStatus = `
SELECT count(*) FROM orders
WHERE restaurant_id = $1 AND status = $2
`

type CountOrdersByStatusParams struct {
	RestaurantID uuid.UUID
	Status       string
}

func (q *Queries) CountOrdersByStatus(ctx context.Context, arg CountOrdersByStatusParams) (int64, error) {
	row := q.db.QueryRow(ctx, countOrdersByStatus, arg.RestaurantID, arg.Status)
	var n int64
	err := row.Scan(&n)
	return n, err
}
