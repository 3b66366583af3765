// Package orchestrator drives one chat turn: it seeds the cart ledger
// from the caller's cart, runs the model/tool loop until the model
// answers in text, and assembles the reply with the ledger snapshot.
package orchestrator

import (
	"errors"
	"strings"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

const (
	// DefaultMaxModelRounds bounds the model round-trips in one turn.
	DefaultMaxModelRounds = 5

	// FallbackReply is returned on aborted turns. The cart keeps any
	// mutations that already succeeded; the next turn sees them.
	FallbackReply = "Desculpe, estou com dificuldades para processar seu pedido agora. O seu carrinho foi mantido — pode tentar novamente?"
)

type Config struct {
	MaxModelRounds int
}

// Orchestrator is safe for concurrent turns: all mutable state lives in
// the per-turn ledger and transcript.
type Orchestrator struct {
	menu         contractx.MenuStore
	model        contractx.ChatModel
	systemPrompt string
	maxRounds    int
}

func New(menu contractx.MenuStore, model contractx.ChatModel, systemPrompt string, cfg Config) (*Orchestrator, error) {
	if menu == nil {
		return nil, errors.New("menu store is required")
	}
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, errors.New("system prompt is required")
	}

	maxRounds := cfg.MaxModelRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxModelRounds
	}

	return &Orchestrator{
		menu:         menu,
		model:        model,
		systemPrompt: strings.TrimSpace(systemPrompt),
		maxRounds:    maxRounds,
	}, nil
}
