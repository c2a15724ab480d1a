package agent

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"persona-agent/internal/llm"
	"persona-agent/internal/persona"
	"persona-agent/internal/tools"
	apperrors "persona-agent/pkg/errors"
	"persona-agent/pkg/logger"
)

// DefaultMaxToolRounds bounds the tool-dispatch rounds within one turn so a
// misbehaving model cannot loop forever.
const DefaultMaxToolRounds = 10

// ToolRunner executes a single tool call
type ToolRunner interface {
	Execute(ctx context.Context, name, rawArguments string) (*tools.Result, error)
}

// Orchestrator drives the request/tool-call/response cycle for one user turn:
// it repeatedly invokes the model and dispatches the tool calls it requests
// until the model produces final text.
type Orchestrator struct {
	persona   *persona.Persona
	catalog   *tools.Catalog
	runner    ToolRunner
	client    llm.Client
	maxRounds int
	logger    *zap.Logger
}

// NewOrchestrator creates a conversation orchestrator. maxRounds <= 0 falls
// back to DefaultMaxToolRounds.
func NewOrchestrator(p *persona.Persona, catalog *tools.Catalog, runner ToolRunner, client llm.Client, maxRounds int) *Orchestrator {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	return &Orchestrator{
		persona:   p,
		catalog:   catalog,
		runner:    runner,
		client:    client,
		maxRounds: maxRounds,
		logger:    logger.Get(),
	}
}

// Respond resolves one user turn. priorHistory is the caller-retained
// conversation so far; it is sanitized to plain role/content pairs before
// the turn. Returns the final assistant text, or a fatal error
// (ModelInvocationError, TurnBudgetExceededError) for the turn.
func (o *Orchestrator) Respond(ctx context.Context, priorHistory []llm.Message, userMessage string) (string, error) {
	messages := make([]llm.Message, 0, len(priorHistory)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: o.persona.SystemInstruction()})
	messages = append(messages, sanitizeHistory(priorHistory)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	rounds := 0
	for {
		completion, err := o.client.Complete(ctx, messages, o.catalog.Definitions())
		if err != nil {
			return "", err
		}

		if completion.FinishReason != llm.FinishToolCalls {
			o.logger.Debug("Turn complete",
				zap.Int("tool_rounds", rounds),
				zap.Int("messages", len(messages)),
			)
			return completion.Message.Content, nil
		}

		if rounds >= o.maxRounds {
			o.logger.Warn("Turn budget exceeded", zap.Int("max_rounds", o.maxRounds))
			return "", apperrors.NewTurnBudgetExceeded(o.maxRounds)
		}
		rounds++

		// One tool-role message per requested call, in request order
		messages = append(messages, completion.Message)
		for _, call := range completion.Message.ToolCalls {
			messages = append(messages, o.dispatch(ctx, call))
		}
	}
}

// dispatch runs one tool call and converts the outcome, success or failure,
// into the tool-role message the model expects. Recoverable executor errors
// never escape this boundary.
func (o *Orchestrator) dispatch(ctx context.Context, call llm.ToolCall) llm.Message {
	var payload []byte

	result, err := o.runner.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		o.logger.Warn("Tool call failed",
			zap.String("tool", call.Name),
			zap.String("tool_call_id", call.ID),
			zap.Error(err),
		)
		payload, _ = json.Marshal(map[string]string{"error": err.Error()})
	} else {
		o.logger.Info("Tool executed",
			zap.String("tool", call.Name),
			zap.String("tool_call_id", call.ID),
		)
		payload, _ = json.Marshal(result)
	}

	return llm.Message{
		Role:       llm.RoleTool,
		Content:    string(payload),
		ToolCallID: call.ID,
	}
}

// sanitizeHistory keeps only plain user and assistant text from prior turns.
// Tool artifacts from earlier turns are dropped; each turn's tool exchange is
// self-contained.
func sanitizeHistory(history []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		if m.Content == "" {
			continue
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
