package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "persona-agent/pkg/errors"
	"persona-agent/pkg/logger"
)

const maxRetries = 3

var errNoChoices = errors.New("no choices in model response")

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
// (Groq, LiteLLM, OpenAI itself).
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a client for the given endpoint and model
func NewOpenAIClient(baseURL, apiKey, model string, temperature float32) *OpenAIClient {
	// Proxies like LiteLLM accept any key; the SDK just requires one
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		logger:      logger.Get(),
	}
}

// Complete sends the message sequence plus the tool catalog to the model and
// returns either final text or the requested tool calls.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, tools []Tool) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Tools:       toOpenAITools(tools),
		Temperature: c.temperature,
	}

	// Retry with linear backoff on transport failure
	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Warn("Retrying model request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, apperrors.NewModelInvocationError(c.model, attempt, ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		c.logger.Error("Model request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", c.model),
		)
	}

	if err != nil {
		return nil, apperrors.NewModelInvocationError(c.model, maxRetries, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewModelInvocationError(c.model, 1, errNoChoices)
	}

	completion := fromChoice(resp.Choices[0])

	c.logger.Debug("Model response received",
		zap.String("model", c.model),
		zap.String("finish_reason", completion.FinishReason),
		zap.Int("tool_calls", len(completion.Message.ToolCalls)),
	)

	return completion, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}
	return out
}

func fromChoice(choice openai.ChatCompletionChoice) *Completion {
	msg := Message{
		Role:    RoleAssistant,
		Content: choice.Message.Content,
	}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	// Some gateways report finish_reason "stop" even when tool calls are
	// present; the tool call list is authoritative.
	finish := FinishNormal
	if choice.FinishReason == openai.FinishReasonToolCalls || len(msg.ToolCalls) > 0 {
		finish = FinishToolCalls
	}

	return &Completion{
		FinishReason: finish,
		Message:      msg,
	}
}
