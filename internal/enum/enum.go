package enum

// ── Order status state machine (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// IsTerminalOrderStatus reports whether no further transitions are
// allowed out of the given status.
func IsTerminalOrderStatus(s string) bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// IsValidOrderStatus reports whether s is a known order status value.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ── User roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin           = "admin"
	UserRoleRestaurantOwner = "restaurant_owner"
	UserRoleStaff           = "staff"
)

// IsValidUserRole reports whether s is a known role value.
func IsValidUserRole(s string) bool {
	switch s {
	case UserRoleAdmin, UserRoleRestaurantOwner, UserRoleStaff:
		return true
	}
	return false
}

// ── Customization group selection modes (validated at the storage boundary) ──

const (
	SelectionSingle   = "single"
	SelectionMultiple = "multiple"
)
