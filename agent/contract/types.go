package contract

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one transcript turn as seen by the language model.
// Assistant turns may carry tool calls; tool turns answer exactly one of
// them via ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a structured tool invocation requested by the model.
// Arguments carries the raw JSON document the model emitted; the tool
// gateway parses it, not the loop.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult is the outcome of one tool call. Exactly one of Payload or
// Error is meaningful; either way the result becomes a tool turn so the
// model can self-correct on failures.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Tool    string `json:"tool"`
	Payload string `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Content renders the result as the tool-turn body fed back to the model.
func (r ToolResult) Content() string {
	if r.Error != "" {
		b, _ := json.Marshal(map[string]string{"error": r.Error})
		return string(b)
	}
	if r.Payload == "" {
		return "{}"
	}
	return r.Payload
}

// ModelReply is what one completion round returns: free text, or
// one-or-more tool calls.
type ModelReply struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolSchema declares a callable tool to the model. Parameters is a JSON
// Schema object describing the arguments.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// MenuItem is one catalog entry. Immutable after seed.
type MenuItem struct {
	Name        string
	Ingredients string
	UnitPrice   decimal.Decimal
}

// CartItem is the wire shape of one cart line.
type CartItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ChatMessage is one caller-supplied history entry. Only user and
// assistant turns cross the transport boundary.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one chat turn as received from the transport layer.
// The caller owns conversation state: history and cart are resent in
// full on every call, and any caller-supplied total is advisory only.
type TurnRequest struct {
	Message   string
	History   []ChatMessage
	CartItems []CartItem
}

// TurnResult is the assembled outcome of one turn. CartItems and Total
// come from the cart ledger snapshot, never from the model's prose.
type TurnResult struct {
	Reply     string
	CartItems []CartItem
	Total     float64
}
