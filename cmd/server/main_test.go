package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"persona-agent/internal/agent"
	"persona-agent/internal/llm"
	"persona-agent/internal/persona"
	"persona-agent/internal/tools"
)

type stubClient struct {
	reply string
}

func (s stubClient) Complete(ctx context.Context, messages []llm.Message, defs []llm.Tool) (*llm.Completion, error) {
	return &llm.Completion{
		FinishReason: llm.FinishNormal,
		Message:      llm.Message{Role: llm.RoleAssistant, Content: s.reply},
	}, nil
}

type stubNotifier struct{}

func (stubNotifier) Push(ctx context.Context, message string) error { return nil }

func newTestRouter(t *testing.T, reply string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := tools.NewCatalog()
	require.NoError(t, err)

	orch := agent.NewOrchestrator(
		persona.New("Ada", "summary", "profile"),
		catalog,
		tools.NewExecutor(stubNotifier{}, nil),
		stubClient{reply: reply},
		0,
	)
	return newRouter(orch, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, "hi")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestChatEndpoint_InvalidRequest(t *testing.T) {
	router := newTestRouter(t, "hi")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/chat", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpoint_ReturnsReply(t *testing.T) {
	router := newTestRouter(t, "Nice to meet you!")

	body := `{"message":"Hello","history":[{"role":"user","content":"earlier"},{"role":"assistant","content":"reply"}]}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Nice to meet you!", response["reply"])
}
