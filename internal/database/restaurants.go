package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createRestaurant = `
INSERT INTO restaurants (name, slug, description, address, phone, email, logo, theme)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, name, slug, description, address, phone, email, logo, theme, is_active, created_at, updated_at
`

type CreateRestaurantParams struct {
	Name        string
	Slug        string
	Description pgtype.Text
	Address     string
	Phone       pgtype.Text
	Email       pgtype.Text
	Logo        pgtype.Text
	Theme       json.RawMessage
}

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	row := q.db.QueryRow(ctx, createRestaurant,
		arg.Name, arg.Slug, arg.Description, arg.Address, arg.Phone, arg.Email, arg.Logo, arg.Theme)
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.Address, &r.Phone,
		&r.Email, &r.Logo, &r.Theme, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getRestaurant = `
SELECT id, name, slug, description, address, phone, email, logo, theme, is_active, created_at, updated_at
FROM restaurants
WHERE id = $1
`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	row := q.db.QueryRow(ctx, getRestaurant, id)
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.Address, &r.Phone,
		&r.Email, &r.Logo, &r.Theme, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getActiveRestaurantBySlug = `
SELECT id, name, slug, description, address, phone, email, logo, theme, is_active, created_at, updated_at
FROM restaurants
WHERE slug = $1 AND is_active = true
`

// GetActiveRestaurantBySlug resolves the public menu path. A deactivated
// restaurant is indistinguishable from a missing one: both return
// pgx.ErrNoRows.
func (q *Queries) GetActiveRestaurantBySlug(ctx context.Context, slug string) (Restaurant, error) {
	row := q.db.QueryRow(ctx, getActiveRestaurantBySlug, slug)
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.Address, &r.Phone,
		&r.Email, &r.Logo, &r.Theme, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const updateRestaurant = `
UPDATE restaurants
SET name = $1, description = $2, address = $3, phone = $4, email = $5,
    logo = $6, theme = $7, is_active = $8, updated_at = now()
WHERE id = $9
RETURNING id, name, slug, description, address, phone, email, logo, theme, is_active, created_at, updated_at
`

// UpdateRestaurantParams deliberately has no slug field: the slug is
// immutable after creation because QR payloads derive from it.
type UpdateRestaurantParams struct {
	Name        string
	Description pgtype.Text
	Address     string
	Phone       pgtype.Text
	Email       pgtype.Text
	Logo        pgtype.Text
	Theme       json.RawMessage
	IsActive    bool
	ID          uuid.UUID
}

func (q *Queries) UpdateRestaurant(ctx context.Context, arg UpdateRestaurantParams) (Restaurant, error) {
	row := q.db.QueryRow(ctx, updateRestaurant,
		arg.Name, arg.Description, arg.Address, arg.Phone, arg.Email,
		arg.Logo, arg.Theme, arg.IsActive, arg.ID)
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.Address, &r.Phone,
		&r.Email, &r.Logo, &r.Theme, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
