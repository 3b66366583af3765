package contract

import "context"

// MenuStore is the read-only catalog consulted by the pricing tools and
// the cart ledger. Implementations must be safe for concurrent turns.
type MenuStore interface {
	LookupPrice(name string) (MenuItem, error)
	ListMenu() []MenuItem
}

// ChatModel is the stateless language-model endpoint: one transcript plus
// the tool schemas in, one reply out.
type ChatModel interface {
	Complete(ctx context.Context, transcript []Message, tools []ToolSchema) (ModelReply, error)
}

// ToolGateway executes one model-requested tool call. Domain failures are
// reported inside the ToolResult, never as a Go error.
type ToolGateway interface {
	Execute(ctx context.Context, call ToolCall) ToolResult
}
