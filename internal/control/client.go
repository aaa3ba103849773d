package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"overtimer/internal/core/model"
	"overtimer/internal/core/syncproto"
	"overtimer/internal/platform"
)

// ErrMismatchedResponse is returned when a response answers another request.
var ErrMismatchedResponse = errors.New("response does not match request")

// Client sends requests to a running instance, one at a time.
type Client struct {
	mu   sync.Mutex
	conn *syncproto.Conn
}

// NewClient wraps an established stream.
func NewClient(stream io.ReadWriteCloser) *Client {
	return &Client{conn: syncproto.NewConn(stream)}
}

// Dial connects to the running instance of appName.
func Dial(ctx context.Context, appName string) (*Client, error) {
	stream, err := platform.DialRunning(ctx, appName)
	if err != nil {
		return nil, err
	}
	return NewClient(stream), nil
}

// Close hangs up.
func (client *Client) Close() error {
	return client.conn.Close()
}

// Call sends request and waits for its response. A response carrying an
// error message is returned as an error.
func (client *Client) Call(ctx context.Context, request syncproto.Request) (syncproto.Response, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = client.conn.Close() })
	defer stop()

	if err := client.conn.WriteFrame(syncproto.Frame{Request: &request}); err != nil {
		return syncproto.Response{}, contextError(ctx, err)
	}
	frame, err := client.conn.ReadFrame()
	if err != nil {
		return syncproto.Response{}, contextError(ctx, err)
	}
	if frame.Response == nil || frame.Response.ID != request.ID {
		return syncproto.Response{}, ErrMismatchedResponse
	}
	if frame.Response.Error != "" {
		return *frame.Response, fmt.Errorf("%s: %s", request.Kind, frame.Response.Error)
	}
	return *frame.Response, nil
}

// Launch opens a timer for presetID.
func (client *Client) Launch(ctx context.Context, presetID string) (model.InstanceID, error) {
	request := syncproto.NewRequest(syncproto.CreateTimer)
	request.PresetID = presetID
	response, err := client.Call(ctx, request)
	if err != nil {
		return "", err
	}
	return response.InstanceID, nil
}

// List returns the open timers.
func (client *Client) List(ctx context.Context) ([]model.TimerSummary, error) {
	response, err := client.Call(ctx, syncproto.NewRequest(syncproto.ListActive))
	if err != nil {
		return nil, err
	}
	return response.Active, nil
}

// Send issues a fire-and-forget request for one instance.
func (client *Client) Send(ctx context.Context, kind syncproto.RequestKind, id model.InstanceID) error {
	request := syncproto.NewRequest(kind)
	request.InstanceID = id
	_, err := client.Call(ctx, request)
	return err
}

func contextError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
