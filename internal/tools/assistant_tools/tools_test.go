package assistant_tools

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calbot/internal/assistant"
	"github.com/teemow/calbot/internal/server"
)

type fakeBackend struct {
	mu       sync.Mutex
	free     bool
	reserved []string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) CheckFree(context.Context, civil.Date, int, int) (bool, error) {
	return f.free, nil
}

func (f *fakeBackend) Reserve(_ context.Context, date civil.Date, _, _ int, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserved = append(f.reserved, date.String())
	return true, nil
}

// newContext pins the clock to Monday 2024-06-10.
func newContext(t *testing.T, backend *fakeBackend) *server.ServerContext {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	sc, err := server.NewServerContext(context.Background(), server.Options{
		Backend:  backend,
		Location: time.UTC,
		Logger:   logger,
		Pipeline: assistant.NewPipeline(backend,
			assistant.WithLocation(time.UTC),
			assistant.WithClock(func() time.Time { return now }),
			assistant.WithLogger(logger)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func call(t *testing.T, sc *server.ServerContext, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := handleRequest(context.Background(), req, sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleRequest_Text(t *testing.T) {
	backend := &fakeBackend{free: true}
	sc := newContext(t, backend)

	result := call(t, sc, map[string]interface{}{"input": "Book a meeting tomorrow afternoon"})
	assert.False(t, result.IsError)
	assert.Equal(t, "Your meeting has been booked on 2024-06-11 at 13-17.", text(t, result))
	assert.Equal(t, []string{"2024-06-11"}, backend.reserved)
}

func TestHandleRequest_JSON(t *testing.T) {
	sc := newContext(t, &fakeBackend{})

	result := call(t, sc, map[string]interface{}{
		"input":  "Am I free on Friday from 3 to 5?",
		"format": FormatJSON,
	})
	require.False(t, result.IsError)

	var state map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &state))
	assert.Equal(t, "check", state["intent"])
	assert.Equal(t, "2024-06-14", state["date"])
	assert.Equal(t, false, state["available"])
	assert.Nil(t, state["booked"])
	assert.Equal(t, "You're not free on 2024-06-14 from 3-5.", state["response"])
}

func TestHandleRequest_NotUnderstood(t *testing.T) {
	backend := &fakeBackend{free: true}
	sc := newContext(t, backend)

	result := call(t, sc, map[string]interface{}{"input": "Hello there!"})
	assert.False(t, result.IsError)
	assert.Equal(t, assistant.ReplyNotUnderstood, text(t, result))
	assert.Empty(t, backend.reserved)
}

func TestHandleRequest_InvalidArgs(t *testing.T) {
	sc := newContext(t, &fakeBackend{})

	assert.True(t, call(t, sc, map[string]interface{}{}).IsError)
	assert.True(t, call(t, sc, map[string]interface{}{"input": "   "}).IsError)
	assert.True(t, call(t, sc, map[string]interface{}{"input": "book tomorrow 1-2", "format": "xml"}).IsError)
}

func TestRegisterAssistantTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	require.NoError(t, RegisterAssistantTools(s, newContext(t, &fakeBackend{})))
	assert.Contains(t, s.ListTools(), ToolRequest)

	assert.Error(t, RegisterAssistantTools(s, nil))
}
