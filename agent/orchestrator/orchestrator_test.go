package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
	menux "github.com/forno-labs/pizzabot/agent/menu"
	promptx "github.com/forno-labs/pizzabot/agent/prompt"
)

type modelStep struct {
	reply contractx.ModelReply
	err   error
}

// fakeModel replays a script of completion rounds and records every
// transcript it was given. When the script runs out the last step
// repeats, which models an endlessly tool-calling model.
type fakeModel struct {
	steps       []modelStep
	calls       int
	transcripts [][]contractx.Message
}

func (f *fakeModel) Complete(
	ctx context.Context,
	transcript []contractx.Message,
	tools []contractx.ToolSchema,
) (contractx.ModelReply, error) {
	f.transcripts = append(f.transcripts, append([]contractx.Message(nil), transcript...))
	idx := f.calls
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	f.calls++
	step := f.steps[idx]
	return step.reply, step.err
}

func textStep(text string) modelStep {
	return modelStep{reply: contractx.ModelReply{Content: text}}
}

func toolStep(calls ...contractx.ToolCall) modelStep {
	return modelStep{reply: contractx.ModelReply{ToolCalls: calls}}
}

func testStore() *menux.Store {
	return menux.NewStore([]contractx.MenuItem{
		{Name: "Margherita", UnitPrice: decimal.RequireFromString("10.00")},
		{Name: "Pepperoni", UnitPrice: decimal.RequireFromString("12.50")},
	})
}

func newOrchestrator(t *testing.T, model contractx.ChatModel, cfg Config) *Orchestrator {
	t.Helper()
	o, err := New(testStore(), model, promptx.SystemPrompt(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o
}

func TestRunTurnAddsToCartAndAnswers(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{
		toolStep(contractx.ToolCall{ID: "c1", Name: "add_to_cart", Arguments: `{"item_name":"Margherita","quantity":2}`}),
		textStep("Added 2 Margherita pizzas!"),
	}}
	o := newOrchestrator(t, model, Config{})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{Message: "add two margheritas"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Reply != "Added 2 Margherita pizzas!" {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if len(result.CartItems) != 1 {
		t.Fatalf("expected one cart line, got %v", result.CartItems)
	}
	got := result.CartItems[0]
	if got.Name != "Margherita" || got.Price != 10.00 || got.Quantity != 2 {
		t.Fatalf("unexpected cart line: %+v", got)
	}
	if result.Total != 20.00 {
		t.Fatalf("expected total 20.00, got %v", result.Total)
	}
}

func TestRunTurnToolOrderMatters(t *testing.T) {
	t.Parallel()

	// Add-then-remove must leave an empty cart; the loop may not reorder.
	model := &fakeModel{steps: []modelStep{
		toolStep(
			contractx.ToolCall{ID: "c1", Name: "add_to_cart", Arguments: `{"item_name":"Margherita","quantity":2}`},
			contractx.ToolCall{ID: "c2", Name: "remove_from_cart", Arguments: `{"item_name":"Margherita"}`},
		),
		textStep("Carrinho vazio."),
	}}
	o := newOrchestrator(t, model, Config{})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{Message: "add then clear"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.CartItems) != 0 || result.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", result)
	}
}

func TestRunTurnIterationCap(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{
		toolStep(contractx.ToolCall{ID: "c1", Name: "add_to_cart", Arguments: `{"item_name":"Margherita","quantity":1}`}),
	}}
	o := newOrchestrator(t, model, Config{MaxModelRounds: 3})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{Message: "loop forever"})
	if err != nil {
		t.Fatalf("aborted turns must not surface an error: %v", err)
	}

	if model.calls != 3 {
		t.Fatalf("expected exactly 3 model round-trips, got %d", model.calls)
	}
	if result.Reply != FallbackReply {
		t.Fatalf("expected the fallback reply, got %q", result.Reply)
	}
	// Mutations from the executed rounds are kept, not rolled back.
	if len(result.CartItems) != 1 || result.CartItems[0].Quantity != 3 {
		t.Fatalf("expected 3 accumulated adds, got %v", result.CartItems)
	}
}

func TestRunTurnEmptyModelReplyGetsFallback(t *testing.T) {
	t.Parallel()

	// A blank text reply still commits the tool work; only the reply text
	// is replaced.
	model := &fakeModel{steps: []modelStep{
		toolStep(contractx.ToolCall{ID: "c1", Name: "add_to_cart", Arguments: `{"item_name":"Margherita","quantity":1}`}),
		textStep(""),
	}}
	o := newOrchestrator(t, model, Config{})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{Message: "uma margherita"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != FallbackReply {
		t.Fatalf("expected the fallback reply, got %q", result.Reply)
	}
	if len(result.CartItems) != 1 || result.Total != 10.00 {
		t.Fatalf("expected the add to be kept, got %+v", result)
	}
}

func TestRunTurnRetriesModelOnce(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{
		{err: errors.New("timeout")},
		textStep("Olá!"),
	}}
	o := newOrchestrator(t, model, Config{})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{Message: "oi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != "Olá!" {
		t.Fatalf("expected the retried reply, got %q", result.Reply)
	}
	if model.calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", model.calls)
	}
}

func TestRunTurnModelUnavailableKeepsSeededCart(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{{err: errors.New("down")}}}
	o := newOrchestrator(t, model, Config{})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{
		Message:   "oi",
		CartItems: []contractx.CartItem{{Name: "Pepperoni", Price: 12.50, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("aborted turns must not surface an error: %v", err)
	}

	if model.calls != 2 {
		t.Fatalf("expected one retry (2 calls), got %d", model.calls)
	}
	if result.Reply != FallbackReply {
		t.Fatalf("expected the fallback reply, got %q", result.Reply)
	}
	if result.Total != 25.00 {
		t.Fatalf("expected the seeded cart to survive, got %+v", result)
	}
}

func TestRunTurnRecoversFromBadToolArguments(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{
		toolStep(contractx.ToolCall{ID: "c1", Name: "add_to_cart", Arguments: `{"item_name":"Calzone","quantity":1}`}),
		toolStep(contractx.ToolCall{ID: "c2", Name: "add_to_cart", Arguments: `{"item_name":"Margherita","quantity":1}`}),
		textStep("Adicionei uma Margherita!"),
	}}
	o := newOrchestrator(t, model, Config{})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{Message: "uma calzone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 10.00 {
		t.Fatalf("expected the corrected add to land, got %+v", result)
	}

	// The failed call must have been fed back as a tool turn.
	second := model.transcripts[1]
	last := second[len(second)-1]
	if last.Role != contractx.RoleTool || last.ToolCallID != "c1" {
		t.Fatalf("expected a tool turn for c1, got %+v", last)
	}
	if !strings.Contains(last.Content, "error") {
		t.Fatalf("tool turn should carry the error payload: %s", last.Content)
	}
}

func TestRunTurnSeedsAndSanitizesCallerCart(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{textStep("Tudo certo!")}}
	o := newOrchestrator(t, model, Config{})

	result, err := o.RunTurn(context.Background(), contractx.TurnRequest{
		Message: "o que tem no meu carrinho?",
		CartItems: []contractx.CartItem{
			{Name: "Margherita", Price: 99.99, Quantity: 2}, // price is re-pinned
			{Name: "Calzone", Price: 8.00, Quantity: 1},     // unknown: dropped
			{Name: "Pepperoni", Price: 12.50, Quantity: 0},  // invalid: dropped
			{Name: "Margherita", Price: 10.00, Quantity: 1}, // merged
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.CartItems) != 1 {
		t.Fatalf("expected one surviving line, got %v", result.CartItems)
	}
	got := result.CartItems[0]
	if got.Name != "Margherita" || got.Price != 10.00 || got.Quantity != 3 {
		t.Fatalf("unexpected line: %+v", got)
	}
	if result.Total != 30.00 {
		t.Fatalf("expected total 30.00, got %v", result.Total)
	}
}

func TestRunTurnIsDeterministicForSameInput(t *testing.T) {
	t.Parallel()

	req := contractx.TurnRequest{
		Message:   "add two margheritas",
		CartItems: []contractx.CartItem{{Name: "Pepperoni", Price: 12.50, Quantity: 1}},
	}

	run := func() contractx.TurnResult {
		model := &fakeModel{steps: []modelStep{
			toolStep(contractx.ToolCall{ID: "c1", Name: "add_to_cart", Arguments: `{"item_name":"Margherita","quantity":2}`}),
			textStep("Feito!"),
		}}
		o := newOrchestrator(t, model, Config{})
		result, err := o.RunTurn(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return result
	}

	first := run()
	second := run()
	if first.Total != second.Total {
		t.Fatalf("totals differ across identical turns: %v vs %v", first.Total, second.Total)
	}
}

func TestRunTurnTranscriptShape(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{textStep("Oi!")}}
	o := newOrchestrator(t, model, Config{})

	_, err := o.RunTurn(context.Background(), contractx.TurnRequest{
		Message: "oi",
		History: []contractx.ChatMessage{
			{Role: "user", Content: "olá"},
			{Role: "assistant", Content: "bem-vindo"},
			{Role: "system", Content: "ignored"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transcript := model.transcripts[0]
	if len(transcript) != 4 {
		t.Fatalf("expected system+history+user, got %d turns", len(transcript))
	}
	if transcript[0].Role != contractx.RoleSystem {
		t.Fatalf("first turn must be the system prompt, got %s", transcript[0].Role)
	}
	if transcript[1].Content != "olá" || transcript[2].Content != "bem-vindo" {
		t.Fatalf("history not replayed in order: %+v", transcript[1:3])
	}
	last := transcript[len(transcript)-1]
	if last.Role != contractx.RoleUser || last.Content != "oi" {
		t.Fatalf("last turn must be the new user message, got %+v", last)
	}
}

func TestRunTurnRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(t, &fakeModel{steps: []modelStep{textStep("x")}}, Config{})
	if _, err := o.RunTurn(context.Background(), contractx.TurnRequest{Message: "  "}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	t.Parallel()

	model := &fakeModel{steps: []modelStep{textStep("x")}}
	if _, err := New(nil, model, "prompt", Config{}); err == nil {
		t.Fatal("expected error for nil menu store")
	}
	if _, err := New(testStore(), nil, "prompt", Config{}); err == nil {
		t.Fatal("expected error for nil model")
	}
	if _, err := New(testStore(), model, "  ", Config{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}
