package broadcast

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/logging"
)

type recorder struct {
	id     string
	fail   bool
	mu     sync.Mutex
	frames []string
	closed bool
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) Send(frame []byte) error {
	if r.fail {
		return errors.New("connection reset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, string(frame))
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

type countingPayload struct{ calls *int32 }

func (p countingPayload) MarshalJSON() ([]byte, error) {
	atomic.AddInt32(p.calls, 1)
	return []byte(`{"ok":true}`), nil
}

func TestPublishReachesEverySubscriber(t *testing.T) {
	hub := NewHub(logging.Discard())
	a, b := &recorder{id: "a"}, &recorder{id: "b"}
	hub.Subscribe(a)
	hub.Subscribe(b)

	hub.Publish(Event{Type: "jobs", Payload: []string{"j1"}})

	want := "event: jobs\ndata: [\"j1\"]\n\n"
	assert.Equal(t, []string{want}, a.frames)
	assert.Equal(t, []string{want}, b.frames)
}

func TestFailedSubscriberIsRemovedOthersStillServed(t *testing.T) {
	hub := NewHub(logging.Discard())
	good, bad := &recorder{id: "good"}, &recorder{id: "bad", fail: true}
	hub.Subscribe(good)
	hub.Subscribe(bad)

	hub.Publish(Event{Type: "pilots", Payload: 1}, Event{Type: "manna", Payload: 2})

	assert.Len(t, good.frames, 2)
	assert.Equal(t, 1, hub.Count())
	assert.True(t, bad.closed)
}

func TestPayloadSerializedOncePerEvent(t *testing.T) {
	hub := NewHub(logging.Discard())
	for _, id := range []string{"1", "2", "3"} {
		hub.Subscribe(&recorder{id: id})
	}
	var calls int32
	hub.Publish(Event{Type: "settings", Payload: countingPayload{calls: &calls}})
	assert.Equal(t, int32(1), calls)
}

func TestPublishWithNoSubscribers(t *testing.T) {
	hub := NewHub(logging.Discard())
	assert.NotPanics(t, func() { hub.Publish(Event{Type: "jobs", Payload: nil}) })
}

func TestUnencodablePayloadIsSkipped(t *testing.T) {
	hub := NewHub(logging.Discard())
	r := &recorder{id: "r"}
	hub.Subscribe(r)

	hub.Publish(Event{Type: "bad", Payload: make(chan int)}, Event{Type: "jobs", Payload: 1})
	require.Len(t, r.frames, 1)
	assert.True(t, strings.HasPrefix(r.frames[0], "event: jobs\n"))
}

func TestCloseDisconnectsAll(t *testing.T) {
	hub := NewHub(logging.Discard())
	r := &recorder{id: "r"}
	hub.Subscribe(r)
	hub.Close()
	assert.Equal(t, 0, hub.Count())
	assert.True(t, r.closed)
}

func TestStreamServeWritesAckFramesAndHeartbeats(t *testing.T) {
	s := NewStream(4)
	var buf safeBuffer
	w := bufio.NewWriter(&buf)

	done := make(chan error, 1)
	go func() { done <- s.Serve(w, 10*time.Millisecond) }()

	require.NoError(t, s.Send([]byte("event: jobs\ndata: []\n\n")))
	require.Eventually(t, func() bool {
		out := buf.String()
		return strings.Contains(out, "event: jobs") && strings.Contains(out, "event: heartbeat")
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Close())
	require.NoError(t, <-done)
	assert.True(t, strings.HasPrefix(buf.String(), "event: connected\n"))
	assert.ErrorIs(t, s.Send([]byte("late")), ErrClosed)
}

func TestStreamServeStopsOnWriteFailure(t *testing.T) {
	s := NewStream(1)
	w := bufio.NewWriter(failingWriter{})
	err := s.Serve(w, time.Hour)
	assert.Error(t, err)
}

func TestStreamSendDoesNotBlockWhenFull(t *testing.T) {
	s := NewStream(1)
	require.NoError(t, s.Send([]byte("one")))
	assert.ErrorIs(t, s.Send([]byte("two")), ErrSlowSubscriber)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
