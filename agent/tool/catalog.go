// Package tool declares the fixed tool surface offered to the language
// model and executes the calls it requests. Every domain failure is
// reported inside the ToolResult so the loop can feed it back to the
// model instead of aborting the turn.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	cartx "github.com/forno-labs/pizzabot/agent/cart"
	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

const (
	ToolGetMenu        = "get_menu"
	ToolGetPrice       = "get_price"
	ToolAddToCart      = "add_to_cart"
	ToolRemoveFromCart = "remove_from_cart"
)

// maxQuantity caps model-supplied quantities. Anything larger is a
// hallucinated argument, not an order.
const maxQuantity = 1000

// Schemas returns the versioned tool declarations sent to the model on
// every completion round.
func Schemas() []contractx.ToolSchema {
	return []contractx.ToolSchema{
		{
			Name:        ToolGetMenu,
			Description: "List every pizza on the menu with ingredients and price.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        ToolGetPrice,
			Description: "Get the price and ingredients of one pizza by name.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item_name": map[string]any{
						"type":        "string",
						"description": "The pizza name, e.g. \"Margherita Classica\".",
					},
				},
				"required": []string{"item_name"},
			},
		},
		{
			Name:        ToolAddToCart,
			Description: "Add a quantity of one pizza to the customer's cart.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item_name": map[string]any{
						"type":        "string",
						"description": "The pizza name.",
					},
					"quantity": map[string]any{
						"type":        "integer",
						"description": "How many to add. Must be at least 1.",
					},
				},
				"required": []string{"item_name", "quantity"},
			},
		},
		{
			Name:        ToolRemoveFromCart,
			Description: "Remove a pizza from the cart, or reduce its quantity.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item_name": map[string]any{
						"type":        "string",
						"description": "The pizza name.",
					},
					"quantity": map[string]any{
						"type":        "integer",
						"description": "How many to remove. Omit to remove the whole line.",
					},
				},
				"required": []string{"item_name"},
			},
		},
	}
}

// Gateway binds the tool surface to one turn's cart ledger and the
// shared menu store.
type Gateway struct {
	menu   contractx.MenuStore
	ledger *cartx.Ledger
}

func NewGateway(menu contractx.MenuStore, ledger *cartx.Ledger) *Gateway {
	return &Gateway{menu: menu, ledger: ledger}
}

var _ contractx.ToolGateway = (*Gateway)(nil)

// Execute runs one tool call synchronously. Unknown tools, malformed
// arguments, and ledger failures all come back as result errors.
func (g *Gateway) Execute(ctx context.Context, call contractx.ToolCall) contractx.ToolResult {
	res := contractx.ToolResult{CallID: call.ID, Tool: call.Name}

	switch call.Name {
	case ToolGetMenu:
		res.Payload = g.executeGetMenu()
	case ToolGetPrice:
		args, err := parseItemArgs(call.Arguments, false)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Payload, res.Error = g.executeGetPrice(args.ItemName)
	case ToolAddToCart:
		args, err := parseItemArgs(call.Arguments, true)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Payload, res.Error = g.executeAddToCart(args.ItemName, args.quantity())
	case ToolRemoveFromCart:
		args, err := parseItemArgs(call.Arguments, false)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Payload, res.Error = g.executeRemoveFromCart(args.ItemName, args.quantity())
	default:
		res.Error = fmt.Sprintf("%s: %s", contractx.ErrUnsupportedTool, call.Name)
	}

	return res
}

type menuEntry struct {
	Name        string  `json:"name"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price"`
}

func (g *Gateway) executeGetMenu() string {
	items := g.menu.ListMenu()
	entries := make([]menuEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, menuEntry{
			Name:        item.Name,
			Ingredients: item.Ingredients,
			Price:       item.UnitPrice.InexactFloat64(),
		})
	}
	return mustMarshal(map[string]any{"pizzas": entries})
}

func (g *Gateway) executeGetPrice(name string) (payload, errText string) {
	item, err := g.menu.LookupPrice(name)
	if err != nil {
		// List what is available so the model can correct the name.
		names := make([]string, 0)
		for _, it := range g.menu.ListMenu() {
			names = append(names, it.Name)
		}
		return "", fmt.Sprintf("%s; available pizzas: %s", err, strings.Join(names, ", "))
	}
	return mustMarshal(menuEntry{
		Name:        item.Name,
		Ingredients: item.Ingredients,
		Price:       item.UnitPrice.InexactFloat64(),
	}), ""
}

func (g *Gateway) executeAddToCart(name string, quantity int) (payload, errText string) {
	if err := g.ledger.AddItem(name, quantity); err != nil {
		return "", err.Error()
	}
	items, total := g.ledger.Snapshot()
	return mustMarshal(map[string]any{"cart": items, "total": total}), ""
}

func (g *Gateway) executeRemoveFromCart(name string, quantity int) (payload, errText string) {
	if err := g.ledger.RemoveItem(name, quantity); err != nil {
		return "", err.Error()
	}
	items, total := g.ledger.Snapshot()
	return mustMarshal(map[string]any{"cart": items, "total": total}), ""
}

type itemArgs struct {
	ItemName string   `json:"item_name"`
	Quantity *float64 `json:"quantity"`
}

func (a itemArgs) quantity() int {
	if a.Quantity == nil {
		return 0
	}
	return int(*a.Quantity)
}

func parseItemArgs(raw string, quantityRequired bool) (itemArgs, error) {
	var args itemArgs
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return itemArgs{}, fmt.Errorf("%w: %v", contractx.ErrInvalidToolArguments, err)
		}
	}

	if strings.TrimSpace(args.ItemName) == "" {
		return itemArgs{}, fmt.Errorf("%w: item_name is required", contractx.ErrInvalidToolArguments)
	}
	if quantityRequired && args.Quantity == nil {
		return itemArgs{}, fmt.Errorf("%w: quantity is required", contractx.ErrInvalidToolArguments)
	}
	if args.Quantity != nil {
		if *args.Quantity != math.Trunc(*args.Quantity) {
			return itemArgs{}, fmt.Errorf("%w: quantity must be a whole number", contractx.ErrInvalidToolArguments)
		}
		// Conversion to int is implementation-defined outside the int range,
		// so out-of-range values are rejected before quantity() runs.
		if math.Abs(*args.Quantity) > maxQuantity {
			return itemArgs{}, fmt.Errorf("%w: quantity must be between 1 and %d", contractx.ErrInvalidToolArguments, maxQuantity)
		}
	}
	return args, nil
}

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
