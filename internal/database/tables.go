package database

import (
	"context"

	"github.com/google/uuid"
)

const listTablesByRestaurant = `
SELECT id, restaurant_id, number, qr_code, is_active, created_at, updated_at
FROM tables
WHERE restaurant_id = $1
ORDER BY number
`

func (q *Queries) ListTablesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Table, error) {
	rows, err := q.db.Query(ctx, listTablesByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.QrCode,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const getTable = `
SELECT id, restaurant_id, number, qr_code, is_active, created_at, updated_at
FROM tables
WHERE id = $1 AND restaurant_id = $2
`

type GetTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetTable(ctx context.Context, arg GetTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, getTable, arg.ID, arg.RestaurantID)
	var t Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.QrCode,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const getActiveTableByNumber = `
SELECT id, restaurant_id, number, qr_code, is_active, created_at, updated_at
FROM tables
WHERE restaurant_id = $1 AND number = $2 AND is_active = true
`

type GetActiveTableByNumberParams struct {
	RestaurantID uuid.UUID
	Number       string
}

// GetActiveTableByNumber resolves the table half of a public menu path.
// Deactivated tables return pgx.ErrNoRows like missing ones.
func (q *Queries) GetActiveTableByNumber(ctx context.Context, arg GetActiveTableByNumberParams) (Table, error) {
	row := q.db.QueryRow(ctx, getActiveTableByNumber, arg.RestaurantID, arg.Number)
	var t Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.QrCode,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTable = `
INSERT INTO tables (restaurant_id, number, qr_code)
VALUES ($1, $2, $3)
RETURNING id, restaurant_id, number, qr_code, is_active, created_at, updated_at
`

type CreateTableParams struct {
	RestaurantID uuid.UUID
	Number       string
	QrCode       string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, createTable, arg.RestaurantID, arg.Number, arg.QrCode)
	var t Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.QrCode,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const updateTable = `
UPDATE tables
SET number = $1, qr_code = $2, is_active = $3, updated_at = now()
WHERE id = $4 AND restaurant_id = $5
RETURNING id, restaurant_id, number, qr_code, is_active, created_at, updated_at
`

type UpdateTableParams struct {
	Number       string
	QrCode       string
	IsActive     bool
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, updateTable,
		arg.Number, arg.QrCode, arg.IsActive, arg.ID, arg.RestaurantID)
	var t Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.QrCode,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const softDeleteTable = `
UPDATE tables
SET is_active = false, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// SoftDeleteTable keeps the row because historical orders reference it.
func (q *Queries) SoftDeleteTable(ctx context.Context, arg SoftDeleteTableParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteTable, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}
