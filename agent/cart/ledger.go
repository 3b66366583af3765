// Package cart holds the request-scoped order ledger. A Ledger is the
// authoritative record of what the customer is buying during one turn;
// the total is always recomputed from the lines, so it cannot drift from
// whatever the model claims in free text.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

type line struct {
	name      string
	quantity  int
	unitPrice decimal.Decimal
}

// Ledger is owned by a single turn and is not safe for concurrent use.
type Ledger struct {
	menu  contractx.MenuStore
	lines []line
}

func NewLedger(menu contractx.MenuStore) *Ledger {
	return &Ledger{menu: menu}
}

// AddItem resolves the canonical price for name and merges quantity into
// an existing line, or appends a new line with the price pinned at
// add-time. The ledger is left untouched on any failure.
func (l *Ledger) AddItem(name string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", contractx.ErrInvalidQuantity, quantity)
	}

	item, err := l.menu.LookupPrice(name)
	if err != nil {
		return err
	}

	for i := range l.lines {
		if l.lines[i].name == item.Name {
			l.lines[i].quantity += quantity
			return nil
		}
	}

	l.lines = append(l.lines, line{
		name:      item.Name,
		quantity:  quantity,
		unitPrice: item.UnitPrice,
	})
	return nil
}

// RemoveItem decrements the line for name by quantity. A quantity of zero
// or one at-or-above the current count removes the line entirely.
func (l *Ledger) RemoveItem(name string, quantity int) error {
	idx := l.findLine(name)
	if idx < 0 {
		return fmt.Errorf("%w: %q", contractx.ErrItemNotInCart, name)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: got %d", contractx.ErrInvalidQuantity, quantity)
	}

	if quantity == 0 || quantity >= l.lines[idx].quantity {
		l.lines = append(l.lines[:idx], l.lines[idx+1:]...)
		return nil
	}

	l.lines[idx].quantity -= quantity
	return nil
}

// SetQuantity replaces the quantity on an existing line. Use RemoveItem
// to drop a line; zero is rejected here.
func (l *Ledger) SetQuantity(name string, quantity int) error {
	idx := l.findLine(name)
	if idx < 0 {
		return fmt.Errorf("%w: %q", contractx.ErrItemNotInCart, name)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", contractx.ErrInvalidQuantity, quantity)
	}

	l.lines[idx].quantity = quantity
	return nil
}

// Snapshot projects the current lines into the wire shape. The total is
// recomputed on every call: sum of quantity x unit price, rounded
// half-up to two decimal places.
func (l *Ledger) Snapshot() ([]contractx.CartItem, float64) {
	items := make([]contractx.CartItem, 0, len(l.lines))
	total := decimal.Zero
	for _, ln := range l.lines {
		total = total.Add(ln.unitPrice.Mul(decimal.NewFromInt(int64(ln.quantity))))
		items = append(items, contractx.CartItem{
			Name:     ln.name,
			Price:    ln.unitPrice.InexactFloat64(),
			Quantity: ln.quantity,
		})
	}
	return items, total.Round(2).InexactFloat64()
}

func (l *Ledger) findLine(name string) int {
	item, err := l.menu.LookupPrice(name)
	canonical := name
	if err == nil {
		canonical = item.Name
	}
	for i := range l.lines {
		if l.lines[i].name == canonical {
			return i
		}
	}
	return -1
}
