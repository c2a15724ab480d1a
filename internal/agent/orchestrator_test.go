package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-agent/internal/llm"
	"persona-agent/internal/persona"
	"persona-agent/internal/tools"
	apperrors "persona-agent/pkg/errors"
)

// Mock implementations for testing

type mockClient struct {
	responses []*llm.Completion
	err       error
	calls     [][]llm.Message
}

func (m *mockClient) Complete(ctx context.Context, messages []llm.Message, defs []llm.Tool) (*llm.Completion, error) {
	m.calls = append(m.calls, append([]llm.Message(nil), messages...))
	if m.err != nil {
		return nil, m.err
	}
	i := len(m.calls) - 1
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

type mockRunner struct {
	executed []string
	results  map[string]*tools.Result
	errs     map[string]error
}

func (m *mockRunner) Execute(ctx context.Context, name, rawArguments string) (*tools.Result, error) {
	m.executed = append(m.executed, name)
	if err, ok := m.errs[name]; ok {
		return nil, err
	}
	if res, ok := m.results[name]; ok {
		return res, nil
	}
	return &tools.Result{Recorded: "ok"}, nil
}

func textCompletion(content string) *llm.Completion {
	return &llm.Completion{
		FinishReason: llm.FinishNormal,
		Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
	}
}

func toolCompletion(calls ...llm.ToolCall) *llm.Completion {
	return &llm.Completion{
		FinishReason: llm.FinishToolCalls,
		Message:      llm.Message{Role: llm.RoleAssistant, ToolCalls: calls},
	}
}

func newTestOrchestrator(t *testing.T, client llm.Client, runner ToolRunner, maxRounds int) *Orchestrator {
	t.Helper()
	catalog, err := tools.NewCatalog()
	require.NoError(t, err)
	p := persona.New("Ada", "Short summary.", "Full profile.")
	return NewOrchestrator(p, catalog, runner, client, maxRounds)
}

func TestRespond_FinalTextWithoutTools(t *testing.T) {
	client := &mockClient{responses: []*llm.Completion{
		textCompletion("I don't have a public email, but I can pass your contact along."),
	}}
	runner := &mockRunner{}

	orch := newTestOrchestrator(t, client, runner, 0)
	reply, err := orch.Respond(context.Background(), nil, "What's your email?")

	require.NoError(t, err)
	assert.Equal(t, "I don't have a public email, but I can pass your contact along.", reply)
	assert.Empty(t, runner.executed, "no tool should be dispatched")
	assert.Len(t, client.calls, 1)

	// System instruction first, user message last
	first := client.calls[0]
	require.Len(t, first, 2)
	assert.Equal(t, llm.RoleSystem, first[0].Role)
	assert.Equal(t, llm.RoleUser, first[1].Role)
	assert.Equal(t, "What's your email?", first[1].Content)
}

func TestRespond_SingleToolRoundTrip(t *testing.T) {
	client := &mockClient{responses: []*llm.Completion{
		toolCompletion(llm.ToolCall{
			ID:        "call-1",
			Name:      tools.ToolRecordUserDetails,
			Arguments: `{"email":"a@b.com"}`,
		}),
		textCompletion("Thanks, I'll be in touch!"),
	}}
	runner := &mockRunner{}

	orch := newTestOrchestrator(t, client, runner, 0)
	reply, err := orch.Respond(context.Background(), nil, "My email is a@b.com")

	require.NoError(t, err)
	assert.Equal(t, "Thanks, I'll be in touch!", reply)
	assert.Equal(t, []string{tools.ToolRecordUserDetails}, runner.executed)
	require.Len(t, client.calls, 2)

	// Second model call must see the assistant tool-call message followed by
	// the matching tool acknowledgment
	second := client.calls[1]
	require.Len(t, second, 4)
	assistant := second[2]
	toolMsg := second[3]
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, llm.RoleTool, toolMsg.Role)
	assert.Equal(t, "call-1", toolMsg.ToolCallID)

	var ack map[string]string
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &ack))
	assert.Equal(t, "ok", ack["recorded"])
}

func TestRespond_MultipleToolCallsKeepOrder(t *testing.T) {
	calls := []llm.ToolCall{
		{ID: "call-1", Name: tools.ToolRecordUserDetails, Arguments: `{"email":"a@b.com"}`},
		{ID: "call-2", Name: tools.ToolRecordUnknownQuestion, Arguments: `{"question":"favorite color?"}`},
		{ID: "call-3", Name: tools.ToolRecordUnknownQuestion, Arguments: `{"question":"shoe size?"}`},
	}
	client := &mockClient{responses: []*llm.Completion{
		toolCompletion(calls...),
		textCompletion("Done."),
	}}
	runner := &mockRunner{}

	orch := newTestOrchestrator(t, client, runner, 0)
	_, err := orch.Respond(context.Background(), nil, "hi")
	require.NoError(t, err)

	// Exactly one tool-role message per requested call, ids in request order
	second := client.calls[1]
	var toolMessages []llm.Message
	for _, m := range second {
		if m.Role == llm.RoleTool {
			toolMessages = append(toolMessages, m)
		}
	}
	require.Len(t, toolMessages, len(calls))
	for i, m := range toolMessages {
		assert.Equal(t, calls[i].ID, m.ToolCallID)
	}
}

func TestRespond_UnknownToolRecovers(t *testing.T) {
	client := &mockClient{responses: []*llm.Completion{
		toolCompletion(llm.ToolCall{ID: "call-1", Name: "delete_everything", Arguments: `{}`}),
		textCompletion("I can't do that."),
	}}
	// Real executor so the unknown-tool path is exercised end to end
	executor := tools.NewExecutor(noopNotifier{}, nil)

	orch := newTestOrchestrator(t, client, executor, 0)
	reply, err := orch.Respond(context.Background(), nil, "wipe your memory")

	require.NoError(t, err, "unknown tool must not abort the turn")
	assert.Equal(t, "I can't do that.", reply)

	second := client.calls[1]
	toolMsg := second[len(second)-1]
	assert.Equal(t, llm.RoleTool, toolMsg.Role)
	assert.Equal(t, "call-1", toolMsg.ToolCallID)
	assert.Contains(t, toolMsg.Content, "unknown tool")
}

func TestRespond_MalformedArgumentsRecover(t *testing.T) {
	client := &mockClient{responses: []*llm.Completion{
		toolCompletion(llm.ToolCall{ID: "call-1", Name: tools.ToolRecordUserDetails, Arguments: `{not json`}),
		textCompletion("Could you share your email again?"),
	}}
	executor := tools.NewExecutor(noopNotifier{}, nil)

	orch := newTestOrchestrator(t, client, executor, 0)
	reply, err := orch.Respond(context.Background(), nil, "my email is...")

	require.NoError(t, err)
	assert.Equal(t, "Could you share your email again?", reply)

	toolMsg := client.calls[1][len(client.calls[1])-1]
	assert.Contains(t, toolMsg.Content, "error")
}

func TestRespond_ModelErrorPropagates(t *testing.T) {
	wantErr := apperrors.NewModelInvocationError("test-model", 3, errors.New("connection refused"))
	client := &mockClient{err: wantErr}

	orch := newTestOrchestrator(t, client, &mockRunner{}, 0)
	_, err := orch.Respond(context.Background(), nil, "hello")

	require.Error(t, err)
	var modelErr *apperrors.ModelInvocationError
	assert.ErrorAs(t, err, &modelErr)
}

func TestRespond_TurnBudgetExceeded(t *testing.T) {
	// Model never stops requesting tools
	client := &mockClient{responses: []*llm.Completion{
		toolCompletion(llm.ToolCall{ID: "call-1", Name: tools.ToolRecordUnknownQuestion, Arguments: `{"question":"?"}`}),
	}}
	runner := &mockRunner{}

	orch := newTestOrchestrator(t, client, runner, 3)
	_, err := orch.Respond(context.Background(), nil, "loop forever")

	require.Error(t, err)
	var budgetErr *apperrors.TurnBudgetExceededError
	require.ErrorAs(t, err, &budgetErr)
	assert.Equal(t, 3, budgetErr.Rounds)
	assert.Len(t, runner.executed, 3, "all rounds under the limit keep normal semantics")
}

func TestRespond_SanitizesPriorHistory(t *testing.T) {
	client := &mockClient{responses: []*llm.Completion{textCompletion("hi")}}

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "earlier question"},
		{Role: llm.RoleAssistant, Content: "", ToolCalls: []llm.ToolCall{{ID: "old-1", Name: "x"}}},
		{Role: llm.RoleTool, Content: `{"recorded":"ok"}`, ToolCallID: "old-1"},
		{Role: llm.RoleAssistant, Content: "earlier answer"},
	}

	orch := newTestOrchestrator(t, client, &mockRunner{}, 0)
	_, err := orch.Respond(context.Background(), history, "new question")
	require.NoError(t, err)

	sent := client.calls[0]
	require.Len(t, sent, 4, "system + 2 surviving history entries + user")
	assert.Equal(t, "earlier question", sent[1].Content)
	assert.Equal(t, "earlier answer", sent[2].Content)
	for _, m := range sent {
		assert.Empty(t, m.ToolCallID)
		if m.Role != llm.RoleTool {
			continue
		}
		t.Errorf("tool message leaked into sanitized history: %+v", m)
	}
}

func TestRespond_SystemInstructionDeterministic(t *testing.T) {
	client := &mockClient{responses: []*llm.Completion{textCompletion("hi")}}
	orch := newTestOrchestrator(t, client, &mockRunner{}, 0)

	_, err := orch.Respond(context.Background(), nil, "one")
	require.NoError(t, err)
	_, err = orch.Respond(context.Background(), nil, "two")
	require.NoError(t, err)

	require.Len(t, client.calls, 2)
	assert.Equal(t, client.calls[0][0].Content, client.calls[1][0].Content)
}

type noopNotifier struct{}

func (noopNotifier) Push(ctx context.Context, message string) error { return nil }
