package control

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overtimer/internal/core/model"
	"overtimer/internal/core/syncproto"
)

type fakeHandler struct {
	mu       sync.Mutex
	requests []syncproto.Request
}

func (h *fakeHandler) HandleRequest(_ context.Context, request syncproto.Request) syncproto.Response {
	h.mu.Lock()
	h.requests = append(h.requests, request)
	h.mu.Unlock()

	response := syncproto.Response{ID: request.ID}
	switch request.Kind {
	case syncproto.CreateTimer:
		if request.PresetID != "fire" {
			response.Error = "invalid preset: unknown preset"
			break
		}
		response.InstanceID = "fire-1-1"
	case syncproto.ListActive:
		response.Active = []model.TimerSummary{{InstanceID: "fire-1-1", Title: "Fire"}}
	}
	return response
}

func (h *fakeHandler) kinds() []syncproto.RequestKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]syncproto.RequestKind, 0, len(h.requests))
	for _, request := range h.requests {
		kinds = append(kinds, request.Kind)
	}
	return kinds
}

func startServer(t *testing.T, handler syncproto.Handler) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- Serve(ctx, listener, handler) }()
	t.Cleanup(cancel)
	return listener.Addr().String(), cancel, served
}

func dial(t *testing.T, address string) *Client {
	t.Helper()
	conn, err := net.Dial("tcp", address)
	require.NoError(t, err)
	client := NewClient(conn)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLaunchAndList(t *testing.T) {
	handler := &fakeHandler{}
	address, _, _ := startServer(t, handler)
	client := dial(t, address)
	ctx := context.Background()

	id, err := client.Launch(ctx, "fire")
	require.NoError(t, err)
	assert.Equal(t, model.InstanceID("fire-1-1"), id)

	active, err := client.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.TimerSummary{{InstanceID: "fire-1-1", Title: "Fire"}}, active)

	require.NoError(t, client.Send(ctx, syncproto.StartTimer, id))
	assert.Equal(t, []syncproto.RequestKind{syncproto.CreateTimer, syncproto.ListActive, syncproto.StartTimer}, handler.kinds())
}

func TestErrorResponse(t *testing.T) {
	address, _, _ := startServer(t, &fakeHandler{})
	client := dial(t, address)

	_, err := client.Launch(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid preset")
}

func TestServeStopsOnCancel(t *testing.T) {
	address, cancel, served := startServer(t, &fakeHandler{})
	client := dial(t, address)
	_, err := client.List(context.Background())
	require.NoError(t, err)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCallHonoursContext(t *testing.T) {
	server, clientSide := net.Pipe()
	defer server.Close()
	client := NewClient(clientSide)

	go func() {
		buffer := make([]byte, 1024)
		_, _ = server.Read(buffer)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
