package syncproto

import (
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overtimer/internal/core/model"
	"overtimer/internal/core/presets"
)

type collector struct {
	mu     sync.Mutex
	pushes []Push
}

func (c *collector) Deliver(push Push) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushes = append(c.pushes, push)
}

func (c *collector) kinds() []PushKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]PushKind, 0, len(c.pushes))
	for _, push := range c.pushes {
		kinds = append(kinds, push.Kind)
	}
	return kinds
}

func TestHubRouting(t *testing.T) {
	hub := NewHub()
	launcher, first, second := &collector{}, &collector{}, &collector{}
	hub.SetLauncher(launcher)
	hub.Attach("a", first)
	hub.Attach("b", second)

	assert.True(t, hub.SendTo("a", StateChangedPush(model.TimerInstance{InstanceID: "a"})))
	assert.False(t, hub.SendTo("missing", LogicalFocusPush("missing")))
	hub.Broadcast(GlobalAudioPush(model.DefaultGlobalAudio()))
	assert.True(t, hub.ToLauncher(TimerClosedPush("c")))

	assert.Equal(t, []PushKind{StateChanged, GlobalAudioChanged}, first.kinds())
	assert.Equal(t, []PushKind{GlobalAudioChanged}, second.kinds())
	assert.Equal(t, []PushKind{GlobalAudioChanged, TimerClosed}, launcher.kinds())

	assert.True(t, hub.Detach("a"))
	assert.False(t, hub.Detach("a"))
	assert.Equal(t, 1, hub.Attached())
}

func TestHubWithoutLauncher(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.ToLauncher(TimerCreatedPush(model.TimerSummary{InstanceID: "a", Title: "A"})))
	hub.Broadcast(GlobalAudioPush(model.DefaultGlobalAudio()))
}

func TestMailboxPreservesOrder(t *testing.T) {
	received := make(chan Push, 8)
	mailbox := NewMailbox("test", 8, func(push Push) { received <- push })

	for i := 0; i < 5; i++ {
		mailbox.Deliver(StateChangedPush(model.TimerInstance{TimeLeft: float64(i)}))
	}
	mailbox.Close()
	<-mailbox.Done()

	close(received)
	var order []float64
	for push := range received {
		order = append(order, push.Instance.TimeLeft)
	}
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, order)
}

func TestMailboxDropsWhenFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	mailbox := NewMailbox("slow", 1, func(Push) {
		once.Do(func() { close(started) })
		<-release
	})

	mailbox.Deliver(LogicalFocusPush("a"))
	<-started
	mailbox.Deliver(LogicalFocusPush("a"))
	mailbox.Deliver(LogicalFocusPush("a"))
	assert.Equal(t, uint64(1), mailbox.Dropped())

	close(release)
	mailbox.Close()
	mailbox.Deliver(LogicalFocusPush("a"))
	<-mailbox.Done()
}

func TestMailboxSurvivesHandlerPanic(t *testing.T) {
	handled := make(chan struct{}, 1)
	calls := 0
	mailbox := NewMailbox("flaky", 4, func(Push) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		handled <- struct{}{}
	})
	mailbox.Deliver(LogicalFocusPush("a"))
	mailbox.Deliver(LogicalFocusPush("a"))

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("second push never handled")
	}
	mailbox.Close()
}

func TestAwaitedKinds(t *testing.T) {
	assert.True(t, CreateTimer.Awaited())
	assert.True(t, GetState.Awaited())
	assert.True(t, ListActive.Awaited())
	assert.False(t, StartTimer.Awaited())
	assert.False(t, ToggleGlobalMute.Awaited())
}

func TestFrameRoundTripsOverStream(t *testing.T) {
	client, server := net.Pipe()
	clientConn, serverConn := NewConn(client), NewConn(server)
	defer clientConn.Close()

	fire, _ := presets.ByID("fire")
	request := NewRequest(CreateTimer)
	request.Preset = &fire
	request.PresetID = fire.ID

	go func() {
		_ = clientConn.WriteFrame(Frame{Request: &request})
	}()

	frame, err := serverConn.ReadFrame()
	require.NoError(t, err)
	require.NotNil(t, frame.Request)
	assert.Equal(t, request.ID, frame.Request.ID)
	assert.Equal(t, CreateTimer, frame.Request.Kind)
	require.NotNil(t, frame.Request.Preset)
	assert.Equal(t, fire.CountdownSounds, frame.Request.Preset.CountdownSounds)
	assert.Equal(t, *fire.CompletionTime, *frame.Request.Preset.CompletionTime)

	instance := model.TimerInstance{InstanceID: "fire-1-1", Preset: fire, TimeLeft: 12.5, AudioMode: model.AudioBeep}
	go func() {
		_ = serverConn.WriteFrame(Frame{Response: &Response{ID: request.ID, Instance: &instance}})
	}()

	frame, err = clientConn.ReadFrame()
	require.NoError(t, err)
	require.NotNil(t, frame.Response)
	assert.Equal(t, request.ID, frame.Response.ID)
	assert.Equal(t, 12.5, frame.Response.Instance.TimeLeft)
	assert.Equal(t, model.AudioBeep, frame.Response.Instance.AudioMode)

	require.NoError(t, serverConn.Close())
	_, err = clientConn.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameRequiresOneSide(t *testing.T) {
	data, err := EncodeFrame(Frame{})
	require.NoError(t, err)
	_, err = DecodeFrame(data)
	assert.ErrorIs(t, err, ErrEmptyFrame)

	conn := NewConn(nopStream{})
	assert.ErrorIs(t, conn.WriteFrame(Frame{}), ErrEmptyFrame)

	data, err = EncodeFrame(Frame{Response: &Response{ID: uuid.New(), Error: "nope"}})
	require.NoError(t, err)
	frame, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, "nope", frame.Response.Error)
}

type nopStream struct{}

func (nopStream) Read([]byte) (int, error)    { return 0, io.EOF }
func (nopStream) Write(p []byte) (int, error) { return len(p), nil }
func (nopStream) Close() error                { return nil }
