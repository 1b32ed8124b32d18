package service

import (
	"errors"
	"fmt"

	"github.com/qrdine/api/internal/enum"
)

// Errors returned by status transition validation.
var (
	ErrUnknownStatus  = errors.New("unknown order status")
	ErrSameStatus     = errors.New("order already has this status")
	ErrTerminalStatus = errors.New("order is in a terminal status")
)

// ValidateStatusTransition checks whether an order may move from
// current to next. The workflow is deliberately lenient: staff may jump
// to any other status (including cancelled) from a non-terminal one.
// Only the terminal states completed and cancelled lock the order.
func ValidateStatusTransition(current, next string) error {
	if !enum.IsValidOrderStatus(next) {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, next)
	}
	if enum.IsTerminalOrderStatus(current) {
		return fmt.Errorf("%w: cannot transition from %s", ErrTerminalStatus, current)
	}
	if next == current {
		return ErrSameStatus
	}
	return nil
}
