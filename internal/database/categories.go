package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCategoriesByRestaurant = `
SELECT id, restaurant_id, name, description, sort_order, is_active, created_at, updated_at
FROM categories
WHERE restaurant_id = $1 AND is_active = true
ORDER BY sort_order, name
`

func (q *Queries) ListCategoriesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategoriesByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Description,
			&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createCategory = `
INSERT INTO categories (restaurant_id, name, description, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING id, restaurant_id, name, description, sort_order, is_active, created_at, updated_at
`

type CreateCategoryParams struct {
	RestaurantID uuid.UUID
	Name         string
	Description  pgtype.Text
	SortOrder    int32
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.RestaurantID, arg.Name, arg.Description, arg.SortOrder)
	var c Category
	err := row.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Description,
		&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const updateCategory = `
UPDATE categories
SET name = $1, description = $2, sort_order = $3, updated_at = now()
WHERE id = $4 AND restaurant_id = $5 AND is_active = true
RETURNING id, restaurant_id, name, description, sort_order, is_active, created_at, updated_at
`

type UpdateCategoryParams struct {
	Name         string
	Description  pgtype.Text
	SortOrder    int32
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory,
		arg.Name, arg.Description, arg.SortOrder, arg.ID, arg.RestaurantID)
	var c Category
	err := row.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Description,
		&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const softDeleteCategory = `
UPDATE categories
SET is_active = false, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteCategoryParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) SoftDeleteCategory(ctx context.Context, arg SoftDeleteCategoryParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteCategory, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}
