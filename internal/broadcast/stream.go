package broadcast

import (
	"bufio"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stream errors.
var (
	ErrClosed         = errors.New("subscriber closed")
	ErrSlowSubscriber = errors.New("subscriber buffer full")
)

// Event types that are not state changes.
const (
	EventConnected = "connected"
	EventHeartbeat = "heartbeat"
)

// DefaultHeartbeat is used when Serve is given no heartbeat interval.
const DefaultHeartbeat = 25 * time.Second

// Stream is a buffered subscriber that an HTTP handler drains into a response body.
type Stream struct {
	id        string
	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewStream returns a stream that holds up to buffer undelivered frames.
func NewStream(buffer int) *Stream {
	if buffer < 1 {
		buffer = 1
	}
	return &Stream{
		id:     uuid.NewString(),
		frames: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// ID returns the subscriber ID.
func (s *Stream) ID() string {
	return s.id
}

// Send queues a frame without blocking.
func (s *Stream) Send(frame []byte) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.frames <- frame:
		return nil
	default:
		return ErrSlowSubscriber
	}
}

// Close stops Serve. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Serve writes the connected acknowledgement, then queued frames and periodic heartbeats,
// until the stream is closed or a write fails.
func (s *Stream) Serve(w *bufio.Writer, heartbeat time.Duration) error {
	ack, err := Frame(EventConnected, map[string]string{
		"subscriberId": s.id,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if err := write(w, ack); err != nil {
		return err
	}

	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case frame := <-s.frames:
			if err := write(w, frame); err != nil {
				return err
			}
		case t := <-ticker.C:
			beat, _ := Frame(EventHeartbeat, map[string]string{"timestamp": t.UTC().Format(time.RFC3339)})
			if err := write(w, beat); err != nil {
				return err
			}
		}
	}
}

func write(w *bufio.Writer, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}
