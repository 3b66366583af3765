package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	cartx "github.com/forno-labs/pizzabot/agent/cart"
	contractx "github.com/forno-labs/pizzabot/agent/contract"
	toolx "github.com/forno-labs/pizzabot/agent/tool"
)

// RunTurn handles one chat turn end to end. The returned cart and total
// always come from the ledger snapshot; aborted turns get the fallback
// reply with whatever the last successful tool execution left behind.
func (o *Orchestrator) RunTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return contractx.TurnResult{}, fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	ledger := cartx.NewLedger(o.menu)
	o.seedLedger(ledger, req.CartItems)

	gateway := toolx.NewGateway(o.menu, ledger)
	transcript := o.buildTranscript(req)

	reply, err := o.runLoop(ctx, transcript, gateway, toolx.Schemas())
	if err != nil {
		log.Warn().Err(err).Msg("turn aborted")
		reply = FallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	items, total := ledger.Snapshot()
	return contractx.TurnResult{
		Reply:     reply,
		CartItems: items,
		Total:     total,
	}, nil
}

// seedLedger replays the caller's cart through AddItem so every line is
// re-validated and re-priced against the catalog. Invalid lines are
// dropped, not fatal: the caller's cart is a claim, not a record.
func (o *Orchestrator) seedLedger(ledger *cartx.Ledger, items []contractx.CartItem) {
	for _, item := range items {
		if err := ledger.AddItem(item.Name, item.Quantity); err != nil {
			log.Debug().Str("item", item.Name).Int("quantity", item.Quantity).Err(err).
				Msg("dropping invalid caller cart line")
		}
	}
}

func (o *Orchestrator) buildTranscript(req contractx.TurnRequest) []contractx.Message {
	transcript := make([]contractx.Message, 0, len(req.History)+2)
	transcript = append(transcript, contractx.Message{
		Role:    contractx.RoleSystem,
		Content: o.systemPrompt,
	})

	for _, msg := range req.History {
		role := contractx.Role(msg.Role)
		if role != contractx.RoleUser && role != contractx.RoleAssistant {
			continue
		}
		transcript = append(transcript, contractx.Message{
			Role:    role,
			Content: msg.Content,
		})
	}

	return append(transcript, contractx.Message{
		Role:    contractx.RoleUser,
		Content: req.Message,
	})
}
