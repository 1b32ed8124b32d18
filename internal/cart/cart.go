// Package cart is the diner-side pre-order accumulator. It lives for a
// single browsing session and holds no authoritative state: prices in
// the cart are advisory display values, and the order engine recomputes
// everything from the live catalog at submission.
package cart

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrLineOutOfRange = errors.New("cart line out of range")

// ChosenOption is one selected option with its advisory price delta.
type ChosenOption struct {
	Name       string
	PriceDelta decimal.Decimal
}

// Selection is the chosen options for one customization group.
type Selection struct {
	Group   string
	Options []ChosenOption
}

// Line is one cart entry. Two Adds with the same menu item and an
// identical selection set collapse into one line.
type Line struct {
	MenuItemID uuid.UUID
	UnitPrice  decimal.Decimal
	Quantity   int32
	Selections []Selection
	Notes      string
}

type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add merges into an existing line when the menu item and the exact
// selection set already appear in the cart; otherwise it appends a new
// line.
func (c *Cart) Add(menuItemID uuid.UUID, unitPrice decimal.Decimal, quantity int32, selections []Selection, notes string) {
	if quantity <= 0 {
		return
	}
	key := selectionKey(menuItemID, selections)
	for i := range c.lines {
		if selectionKey(c.lines[i].MenuItemID, c.lines[i].Selections) == key {
			c.lines[i].Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, Line{
		MenuItemID: menuItemID,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
		Selections: selections,
		Notes:      notes,
	})
}

func (c *Cart) Remove(i int) error {
	if i < 0 || i >= len(c.lines) {
		return ErrLineOutOfRange
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// SetQuantity sets line i's quantity; zero removes the line.
func (c *Cart) SetQuantity(i int, n int32) error {
	if i < 0 || i >= len(c.lines) {
		return ErrLineOutOfRange
	}
	if n <= 0 {
		return c.Remove(i)
	}
	c.lines[i].Quantity = n
	return nil
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Subtotal is the advisory running total:
// sum of (unit price + selected deltas) * quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		lineUnit := l.UnitPrice
		for _, s := range l.Selections {
			for _, o := range s.Options {
				lineUnit = lineUnit.Add(o.PriceDelta)
			}
		}
		total = total.Add(lineUnit.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return total
}

// selectionKey builds a canonical identity for (item, selections) so
// that option ordering inside a group does not split cart lines.
func selectionKey(menuItemID uuid.UUID, selections []Selection) string {
	parts := make([]string, 0, len(selections))
	for _, s := range selections {
		names := make([]string, len(s.Options))
		for i, o := range s.Options {
			names[i] = o.Name
		}
		sort.Strings(names)
		parts = append(parts, s.Group+"="+strings.Join(names, ","))
	}
	sort.Strings(parts)
	return menuItemID.String() + "|" + strings.Join(parts, ";")
}
