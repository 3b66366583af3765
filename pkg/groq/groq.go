// Package groq wraps the OpenAI SDK for Groq's OpenAI-compatible chat
// completions API and adapts it to the agent's ChatModel contract.
package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"llama3-70b-8192"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("groq api key is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("groq model is required")
	}
	return nil
}

type Client struct {
	api         openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ contractx.ChatModel = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithRequestTimeout(timeout),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxCompletionToken),
	}, nil
}

// Complete runs one completion round: full transcript plus the tool
// schemas in, either free text or tool calls out.
func (c *Client) Complete(
	ctx context.Context,
	transcript []contractx.Message,
	tools []contractx.ToolSchema,
) (contractx.ModelReply, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toMessageParams(transcript),
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(c.maxTokens)
	}
	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.ModelReply{}, fmt.Errorf("groq: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return contractx.ModelReply{}, errors.New("groq: completion has no choices")
	}

	msg := resp.Choices[0].Message
	reply := contractx.ModelReply{Content: strings.TrimSpace(msg.Content)}
	for _, call := range msg.ToolCalls {
		id := call.ID
		if id == "" {
			id = uuid.NewString()
		}
		reply.ToolCalls = append(reply.ToolCalls, contractx.ToolCall{
			ID:        id,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return reply, nil
}

func toMessageParams(transcript []contractx.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript))
	for _, msg := range transcript {
		out = append(out, toMessageParam(msg))
	}
	return out
}

func toMessageParam(msg contractx.Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case contractx.RoleSystem:
		return openai.SystemMessage(msg.Content)
	case contractx.RoleTool:
		return openai.ToolMessage(msg.Content, msg.ToolCallID)
	case contractx.RoleAssistant:
		if len(msg.ToolCalls) == 0 {
			return openai.AssistantMessage(msg.Content)
		}
		assistant := openai.ChatCompletionAssistantMessageParam{
			ToolCalls: make([]openai.ChatCompletionMessageToolCallParam, 0, len(msg.ToolCalls)),
		}
		if msg.Content != "" {
			assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
				OfString: openai.String(msg.Content),
			}
		}
		for _, call := range msg.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
	default:
		return openai.UserMessage(msg.Content)
	}
}

func toToolParams(tools []contractx.ToolSchema) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(tool.Parameters),
			},
		})
	}
	return out
}
