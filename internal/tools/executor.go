package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "persona-agent/pkg/errors"
	"persona-agent/pkg/logger"
)

// Notifier delivers a push notification. Delivery is best-effort: a failure
// is logged and absorbed, never surfaced to the conversation.
type Notifier interface {
	Push(ctx context.Context, message string) error
}

// Recorder persists tool side effects. Optional; a nil Recorder means
// notifications are the only sink.
type Recorder interface {
	RecordLead(ctx context.Context, email, name, notes string) error
	RecordUnknownQuestion(ctx context.Context, question string) error
}

// Result is the acknowledgment a tool returns to the model
type Result struct {
	Recorded string `json:"recorded"`
}

type userDetailsArgs struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type unknownQuestionArgs struct {
	Question string `json:"question"`
}

// Executor dispatches tool calls to their implementations
type Executor struct {
	notifier Notifier
	recorder Recorder
	logger   *zap.Logger
}

// NewExecutor creates a tool executor. recorder may be nil.
func NewExecutor(notifier Notifier, recorder Recorder) *Executor {
	return &Executor{
		notifier: notifier,
		recorder: recorder,
		logger:   logger.Get(),
	}
}

// Execute decodes rawArguments and runs the named tool. A malformed payload
// yields an ArgumentDecodeError and an unregistered name an UnknownToolError;
// both are recoverable and must be converted by the caller into a tool-role
// error message rather than aborting the turn.
func (e *Executor) Execute(ctx context.Context, name, rawArguments string) (*Result, error) {
	e.logger.Debug("Executing tool", zap.String("tool", name))

	switch name {
	case ToolRecordUserDetails:
		args := userDetailsArgs{
			Name:  "Name not provided",
			Notes: "not provided",
		}
		if err := decodeArguments(name, rawArguments, &args); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("Recording %s with email %s and notes %s", args.Name, args.Email, args.Notes)
		return e.record(ctx, name, note, func(ctx context.Context) error {
			return e.recorder.RecordLead(ctx, args.Email, args.Name, args.Notes)
		}), nil

	case ToolRecordUnknownQuestion:
		var args unknownQuestionArgs
		if err := decodeArguments(name, rawArguments, &args); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("Recording unknown question: %s", args.Question)
		return e.record(ctx, name, note, func(ctx context.Context) error {
			return e.recorder.RecordUnknownQuestion(ctx, args.Question)
		}), nil

	default:
		e.logger.Warn("Unknown tool requested", zap.String("tool", name))
		return nil, apperrors.NewUnknownToolError(name)
	}
}

// record fans the side effect out to the notifier and, when configured, the
// recorder. Both sinks are best-effort; the acknowledgment is returned even
// when delivery fails, since the contract is "attempt to notify".
func (e *Executor) record(ctx context.Context, tool, note string, persist func(context.Context) error) *Result {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.notifier.Push(gctx, note); err != nil {
			e.logger.Warn("Push notification failed",
				zap.String("tool", tool),
				zap.Error(err),
			)
		}
		return nil
	})

	if e.recorder != nil {
		g.Go(func() error {
			if err := persist(gctx); err != nil {
				e.logger.Warn("Lead store write failed",
					zap.String("tool", tool),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	_ = g.Wait()
	return &Result{Recorded: "ok"}
}

func decodeArguments(tool, raw string, into interface{}) error {
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return apperrors.NewArgumentDecodeError(tool, err)
	}
	return nil
}
