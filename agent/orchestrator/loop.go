package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

// The loop is a plain finite-state machine over the transcript:
//
//	awaitingModel -> done            (model answered in text)
//	awaitingModel -> executingTools  (model requested tool calls)
//	executingTools -> awaitingModel  (results appended, ask again)
//
// aborted is reached when the round cap is hit or the model fails twice
// in a row. Tool failures never abort; they are fed back as tool turns.
type loopState int

const (
	stateAwaitingModel loopState = iota
	stateExecutingTools
	stateDone
	stateAborted
)

// runLoop drives the model over the transcript until it produces a text
// reply. On abort it returns the sentinel cause; mutations the gateway
// already applied are intentionally kept.
func (o *Orchestrator) runLoop(
	ctx context.Context,
	transcript []contractx.Message,
	gateway contractx.ToolGateway,
	tools []contractx.ToolSchema,
) (string, error) {
	state := stateAwaitingModel
	rounds := 0

	var reply contractx.ModelReply

	for {
		switch state {
		case stateAwaitingModel:
			if rounds >= o.maxRounds {
				log.Warn().Int("rounds", rounds).Msg("turn aborted: iteration cap")
				return "", fmt.Errorf("%w: after %d rounds", contractx.ErrIterationCapExceeded, rounds)
			}
			rounds++

			var err error
			reply, err = o.completeWithRetry(ctx, transcript, tools)
			if err != nil {
				return "", err
			}

			if len(reply.ToolCalls) == 0 {
				state = stateDone
				break
			}

			transcript = append(transcript, contractx.Message{
				Role:      contractx.RoleAssistant,
				Content:   reply.Content,
				ToolCalls: reply.ToolCalls,
			})
			state = stateExecutingTools

		case stateExecutingTools:
			// Execution order is the model's emission order: add-then-remove
			// and remove-then-add are different carts.
			for _, call := range reply.ToolCalls {
				res := gateway.Execute(ctx, call)
				if res.Error != "" {
					log.Debug().Str("tool", call.Name).Str("error", res.Error).Msg("tool call failed")
				}
				transcript = append(transcript, contractx.Message{
					Role:       contractx.RoleTool,
					Content:    res.Content(),
					ToolCallID: call.ID,
				})
			}
			state = stateAwaitingModel

		case stateDone:
			return reply.Content, nil
		}
	}
}

// completeWithRetry calls the model once and retries a single time with
// the same transcript on failure.
func (o *Orchestrator) completeWithRetry(
	ctx context.Context,
	transcript []contractx.Message,
	tools []contractx.ToolSchema,
) (contractx.ModelReply, error) {
	reply, err := o.model.Complete(ctx, transcript, tools)
	if err == nil {
		return reply, nil
	}
	log.Warn().Err(err).Msg("model call failed, retrying once")

	reply, retryErr := o.model.Complete(ctx, transcript, tools)
	if retryErr == nil {
		return reply, nil
	}
	return contractx.ModelReply{}, fmt.Errorf("%w: %v", contractx.ErrModelUnavailable, retryErr)
}
