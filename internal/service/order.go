package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID    = errors.New("invalid menu_item_id")
	ErrNotFound             = errors.New("restaurant or table not found")
	ErrItemUnavailable      = errors.New("menu item unavailable")
	ErrInvalidCustomization = errors.New("invalid customization")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetActiveRestaurantBySlug(ctx context.Context, slug string) (database.Restaurant, error)
	GetActiveTableByNumber(ctx context.Context, arg database.GetActiveTableByNumberParams) (database.Table, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the diner's submitted cart. It carries intent
// only: menu item ids, selections, and quantities. Any prices the
// client displayed are discarded here.
type CreateOrderRequest struct {
	RestaurantSlug string
	TableNumber    string
	CustomerName   string
	CustomerPhone  string
	Notes          string
	Items          []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line.
type CreateOrderItemRequest struct {
	MenuItemID     string
	Quantity       int32
	Notes          string
	Customizations []SelectionRequest
}

// SelectionRequest names the chosen options for one customization group.
type SelectionRequest struct {
	Group   string
	Options []string
}

// CreateOrderResult is the created order with its item snapshots.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService owns order creation: catalog re-validation, authoritative
// pricing, and the atomic order + items insert.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	timeout  time.Duration
}

// NewOrderService creates a new OrderService. timeout bounds the whole
// creation transaction; zero means no bound.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, timeout time.Duration) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, timeout: timeout}
}

// processedItem holds one validated, priced order line before insert.
type processedItem struct {
	params    database.CreateOrderItemParams
	lineTotal decimal.Decimal
}

// CreateOrder validates the cart against the live catalog, recomputes
// pricing, and persists the order atomically. Retries up to
// maxOrderNumberRetries times on order_number unique constraint
// violations (two concurrent submissions can generate the same number).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint
// violation on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Resolve the table context. An unknown and a deactivated
	// restaurant or table produce the same outcome.
	restaurant, err := store.GetActiveRestaurantBySlug(ctx, req.RestaurantSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	table, err := store.GetActiveTableByNumber(ctx, database.GetActiveTableByNumberParams{
		RestaurantID: restaurant.ID,
		Number:       req.TableNumber,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	// Validate each line against the current catalog and price it from
	// catalog state, not from anything the client sent.
	totalAmount := decimal.Zero
	var items []processedItem

	for i, item := range req.Items {
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}

		menuItem, err := store.GetMenuItem(ctx, database.GetMenuItemParams{
			ID:           menuItemID,
			RestaurantID: restaurant.ID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrItemUnavailable)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}
		if !menuItem.IsAvailable {
			return nil, fmt.Errorf("item[%d] %q: %w", i, menuItem.Name, ErrItemUnavailable)
		}

		selected, deltaSum, err := resolveSelections(menuItem, item.Customizations)
		if err != nil {
			return nil, fmt.Errorf("item[%d] %q: %w", i, menuItem.Name, err)
		}

		unitPrice := numericToDecimal(menuItem.Price)
		lineTotal := unitPrice.Add(deltaSum).Mul(decimal.NewFromInt32(item.Quantity))
		totalAmount = totalAmount.Add(lineTotal)

		notes := pgtype.Text{}
		if item.Notes != "" {
			notes = pgtype.Text{String: item.Notes, Valid: true}
		}

		items = append(items, processedItem{
			params: database.CreateOrderItemParams{
				MenuItemID:     menuItemID,
				Quantity:       item.Quantity,
				UnitPrice:      decimalToNumeric(unitPrice),
				Customizations: selected,
				Notes:          notes,
			},
			lineTotal: lineTotal,
		})
	}

	customerName := pgtype.Text{}
	if req.CustomerName != "" {
		customerName = pgtype.Text{String: req.CustomerName, Valid: true}
	}
	customerPhone := pgtype.Text{}
	if req.CustomerPhone != "" {
		customerPhone = pgtype.Text{String: req.CustomerPhone, Valid: true}
	}
	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID:  restaurant.ID,
		TableID:       table.ID,
		OrderNumber:   generateOrderNumber(),
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Status:        enum.OrderStatusPending,
		TotalAmount:   decimalToNumeric(totalAmount),
		Notes:         notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var itemResults []database.OrderItem
	for _, pi := range items {
		pi.params.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, pi.params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		itemResults = append(itemResults, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{
		Order: order,
		Items: itemResults,
	}, nil
}

// resolveSelections validates the requested selections against the menu
// item's customization groups and returns the captured snapshot plus the
// per-unit price delta sum.
func resolveSelections(menuItem database.MenuItem, reqs []SelectionRequest) ([]database.SelectedCustomization, decimal.Decimal, error) {
	byGroup := make(map[string][]string, len(reqs))
	for _, r := range reqs {
		if _, ok := byGroup[r.Group]; ok {
			return nil, decimal.Zero, fmt.Errorf("%w: duplicate selection for group %q", ErrInvalidCustomization, r.Group)
		}
		byGroup[r.Group] = r.Options
	}

	knownGroups := make(map[string]bool, len(menuItem.Customizations))
	deltaSum := decimal.Zero
	var selected []database.SelectedCustomization

	for _, group := range menuItem.Customizations {
		knownGroups[group.Name] = true
		chosen := byGroup[group.Name]

		if len(chosen) == 0 {
			if group.Required {
				return nil, decimal.Zero, fmt.Errorf("%w: %q selection required", ErrInvalidCustomization, group.Name)
			}
			continue
		}
		if group.Type == enum.SelectionSingle && len(chosen) != 1 {
			return nil, decimal.Zero, fmt.Errorf("%w: %q requires exactly one option", ErrInvalidCustomization, group.Name)
		}

		options := make([]database.SelectedOption, 0, len(chosen))
		for _, name := range chosen {
			opt, ok := findOption(group, name)
			if !ok {
				return nil, decimal.Zero, fmt.Errorf("%w: unknown option %q in group %q", ErrInvalidCustomization, name, group.Name)
			}
			deltaSum = deltaSum.Add(opt.PriceDelta)
			options = append(options, database.SelectedOption{
				Name:       opt.Name,
				PriceDelta: opt.PriceDelta,
			})
		}
		selected = append(selected, database.SelectedCustomization{
			Group:   group.Name,
			Options: options,
		})
	}

	for groupName := range byGroup {
		if !knownGroups[groupName] {
			return nil, decimal.Zero, fmt.Errorf("%w: unknown customization group %q", ErrInvalidCustomization, groupName)
		}
	}

	return selected, deltaSum, nil
}

func findOption(group database.CustomizationGroup, name string) (database.CustomizationOption, bool) {
	for _, o := range group.Options {
		if o.Name == name {
			return o, true
		}
	}
	return database.CustomizationOption{}, false
}

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateOrderNumber builds a human-readable order number from the
// current time plus a random suffix: ORD-<base36 millis>-<5 chars>.
// Uniqueness is enforced by the DB constraint; callers retry on
// conflict rather than relying on the randomness alone.
func generateOrderNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := make([]byte, 5)
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", ts, suffix)
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
