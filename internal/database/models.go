package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Restaurant is the tenant root. Every other row carries its ID directly
// or through its order. Slug is globally unique and immutable.
type Restaurant struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description pgtype.Text
	Address     string
	Phone       pgtype.Text
	Email       pgtype.Text
	Logo        pgtype.Text
	Theme       json.RawMessage
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	RestaurantID   pgtype.UUID
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Description  pgtype.Text
	SortOrder    int32
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItem struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	CategoryID     pgtype.UUID
	Name           string
	Description    pgtype.Text
	Price          pgtype.Numeric
	Image          pgtype.Text
	CategoryTag    string
	IsAvailable    bool
	IsPopular      bool
	Allergens      []string
	Customizations []CustomizationGroup
	SortOrder      int32
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Table struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Number       string
	QrCode       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Order struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	TableID       uuid.UUID
	OrderNumber   string
	CustomerName  pgtype.Text
	CustomerPhone pgtype.Text
	Status        string
	TotalAmount   pgtype.Numeric
	Notes         pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	MenuItemID     uuid.UUID
	Quantity       int32
	UnitPrice      pgtype.Numeric
	Customizations []SelectedCustomization
	Notes          pgtype.Text
	CreatedAt      time.Time
}

// CustomizationGroup is the typed form of the menu item customizations
// column. It never crosses the storage boundary as raw JSON text.
type CustomizationGroup struct {
	Name     string                `json:"name"`
	Type     string                `json:"type"` // single | multiple
	Required bool                  `json:"required"`
	Options  []CustomizationOption `json:"options"`
}

type CustomizationOption struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// SelectedCustomization is one group's selection captured on an order
// item, with the option price deltas frozen at order time.
type SelectedCustomization struct {
	Group   string           `json:"group"`
	Options []SelectedOption `json:"options"`
}

type SelectedOption struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

var (
	ErrInvalidSelectionType = errors.New("customization type must be single or multiple")
	ErrNegativePriceDelta   = errors.New("option price delta must be >= 0")
	ErrEmptyGroupName       = errors.New("customization group name is required")
	ErrEmptyOptions         = errors.New("customization group must have at least one option")
)

// ValidateCustomizationGroups checks the structural invariants of a menu
// item's customization groups before they are written.
func ValidateCustomizationGroups(groups []CustomizationGroup) error {
	for i, g := range groups {
		if g.Name == "" {
			return fmt.Errorf("customizations[%d]: %w", i, ErrEmptyGroupName)
		}
		if g.Type != enum.SelectionSingle && g.Type != enum.SelectionMultiple {
			return fmt.Errorf("customizations[%d]: %w", i, ErrInvalidSelectionType)
		}
		if len(g.Options) == 0 {
			return fmt.Errorf("customizations[%d]: %w", i, ErrEmptyOptions)
		}
		for j, o := range g.Options {
			if o.Name == "" {
				return fmt.Errorf("customizations[%d].options[%d]: name is required", i, j)
			}
			if o.PriceDelta.IsNegative() {
				return fmt.Errorf("customizations[%d].options[%d]: %w", i, j, ErrNegativePriceDelta)
			}
		}
	}
	return nil
}
