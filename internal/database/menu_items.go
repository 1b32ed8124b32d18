package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, restaurant_id, category_id, name, description, price, image,
category_tag, is_available, is_popular, allergens, customizations, sort_order, is_active,
created_at, updated_at`

func scanMenuItem(row interface{ Scan(dest ...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.RestaurantID, &m.CategoryID, &m.Name, &m.Description,
		&m.Price, &m.Image, &m.CategoryTag, &m.IsAvailable, &m.IsPopular,
		&m.Allergens, &m.Customizations, &m.SortOrder, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const listMenuItemsByRestaurant = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE restaurant_id = $1 AND is_active = true
ORDER BY sort_order, name
`

// ListMenuItemsByRestaurant returns every non-deleted item, including
// currently unavailable ones. The admin console needs both.
func (q *Queries) ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const listAvailableMenuItems = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE restaurant_id = $1 AND is_active = true AND is_available = true
ORDER BY sort_order, name
`

// ListAvailableMenuItems is the public menu read path.
func (q *Queries) ListAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listAvailableMenuItems, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenuItem = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1 AND restaurant_id = $2 AND is_active = true
`

type GetMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.RestaurantID))
}

const createMenuItem = `
INSERT INTO menu_items (restaurant_id, category_id, name, description, price, image,
  category_tag, is_popular, allergens, customizations, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + menuItemColumns + `
`

type CreateMenuItemParams struct {
	RestaurantID   uuid.UUID
	CategoryID     pgtype.UUID
	Name           string
	Description    pgtype.Text
	Price          pgtype.Numeric
	Image          pgtype.Text
	CategoryTag    string
	IsPopular      bool
	Allergens      []string
	Customizations []CustomizationGroup
	SortOrder      int32
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	if arg.Allergens == nil {
		arg.Allergens = []string{}
	}
	if arg.Customizations == nil {
		arg.Customizations = []CustomizationGroup{}
	}
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.RestaurantID, arg.CategoryID, arg.Name, arg.Description, arg.Price,
		arg.Image, arg.CategoryTag, arg.IsPopular, arg.Allergens,
		arg.Customizations, arg.SortOrder))
}

const updateMenuItem = `
UPDATE menu_items
SET category_id = $1, name = $2, description = $3, price = $4, image = $5,
    category_tag = $6, is_popular = $7, allergens = $8, customizations = $9,
    sort_order = $10, updated_at = now()
WHERE id = $11 AND restaurant_id = $12 AND is_active = true
RETURNING ` + menuItemColumns + `
`

type UpdateMenuItemParams struct {
	CategoryID     pgtype.UUID
	Name           string
	Description    pgtype.Text
	Price          pgtype.Numeric
	Image          pgtype.Text
	CategoryTag    string
	IsPopular      bool
	Allergens      []string
	Customizations []CustomizationGroup
	SortOrder      int32
	ID             uuid.UUID
	RestaurantID   uuid.UUID
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	if arg.Allergens == nil {
		arg.Allergens = []string{}
	}
	if arg.Customizations == nil {
		arg.Customizations = []CustomizationGroup{}
	}
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.CategoryID, arg.Name, arg.Description, arg.Price, arg.Image,
		arg.CategoryTag, arg.IsPopular, arg.Allergens, arg.Customizations,
		arg.SortOrder, arg.ID, arg.RestaurantID))
}

const setMenuItemAvailability = `
UPDATE menu_items
SET is_available = $1, updated_at = now()
WHERE id = $2 AND restaurant_id = $3 AND is_active = true
RETURNING ` + menuItemColumns + `
`

type SetMenuItemAvailabilityParams struct {
	IsAvailable  bool
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) SetMenuItemAvailability(ctx context.Context, arg SetMenuItemAvailabilityParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, setMenuItemAvailability,
		arg.IsAvailable, arg.ID, arg.RestaurantID))
}

const softDeleteMenuItem = `
UPDATE menu_items
SET is_active = false, is_available = false, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// SoftDeleteMenuItem never removes the row: historical order items keep
// their menu_item_id reference and price snapshot.
func (q *Queries) SoftDeleteMenuItem(ctx context.Context, arg SoftDeleteMenuItemParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteMenuItem, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const countActiveMenuItems = `
SELECT count(*) FROM menu_items
WHERE restaurant_id = $1 AND is_active = true AND is_available = true
`

func (q *Queries) CountActiveMenuItems(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveMenuItems, restaurantID)
	var n int64
	err := row.Scan(&n)
	return n, err
}
