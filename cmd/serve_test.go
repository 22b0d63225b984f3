package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calbot/internal/server"
)

func TestNewMCPServer(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), server.Options{
		Backend:  &fakeBackend{},
		Location: time.UTC,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, err := newMCPServer(sc)
	require.NoError(t, err)

	tools := mcpSrv.ListTools()
	assert.Contains(t, tools, "assistant_request")
	assert.Contains(t, tools, "calendar_check_slot")
	assert.Contains(t, tools, "calendar_book_slot")
	// Listing events is only offered on the Google backend.
	assert.NotContains(t, tools, "calendar_list_events")
}

func TestRunServe_UnsupportedTransport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Calendar.Backend = "remote"
	cfg.Calendar.RemoteURL = "http://localhost:1"
	cfg.Serve.Transport = "carrier-pigeon"

	err := runServe(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported transport type")
}

func TestRunStreamableHTTPServer_Shutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Serve.Addr = "127.0.0.1:0"

	a, err := newApp(context.Background(), cfg, withBackend(&fakeBackend{}))
	require.NoError(t, err)
	defer func() { _ = a.Close(context.Background()) }()

	mcpSrv, err := newMCPServer(a.sc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runStreamableHTTPServer(ctx, a, mcpSrv) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
