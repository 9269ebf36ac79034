package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"scenelink/internal/metrics"
)

// UpdateMailbox buffers inbound update messages. When full, the oldest
// message is dropped; updates carry no acknowledgment.
type UpdateMailbox struct {
	ch chan []byte
}

func NewUpdateMailbox(backlog int) *UpdateMailbox {
	if backlog <= 0 {
		backlog = 1
	}
	return &UpdateMailbox{ch: make(chan []byte, backlog)}
}

func (m *UpdateMailbox) Offer(msg []byte) {
	for {
		select {
		case m.ch <- msg:
			return
		default:
		}
		select {
		case <-m.ch:
			metrics.UpdatesDropped.Inc()
		default:
		}
	}
}

// Receive waits at most timeout for a message. A non-positive timeout
// only checks what is already queued.
func (m *UpdateMailbox) Receive(timeout time.Duration) ([]byte, bool) {
	select {
	case msg := <-m.ch:
		return msg, true
	default:
	}
	if timeout <= 0 {
		return nil, false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case msg := <-m.ch:
		return msg, true
	case <-t.C:
		return nil, false
	}
}

func (m *UpdateMailbox) Len() int { return len(m.ch) }

// ServeUpdates accepts a tracer pushing update messages.
func ServeUpdates(mb *UpdateMailbox, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("updates")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		clog := log.With(zap.String("conn", uuid.NewString()), zap.String("remote", r.RemoteAddr))
		clog.Info("update publisher connected")
		err = pump(conn, mb)
		clog.Info("update publisher disconnected", zap.Error(err))
	}
}

func pump(conn *websocket.Conn, mb *UpdateMailbox) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		mb.Offer(msg)
	}
}

// Subscriber dials the tracer's update endpoint and feeds the mailbox,
// reconnecting with exponential backoff until ctx ends.
type Subscriber struct {
	URL        string
	Mailbox    *UpdateMailbox
	Dialer     *websocket.Dialer
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Log        *zap.Logger
}

func (s *Subscriber) Run(ctx context.Context) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("subscriber").With(zap.String("url", s.URL))
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	minB, maxB := s.MinBackoff, s.MaxBackoff
	if minB <= 0 {
		minB = 100 * time.Millisecond
	}
	if maxB < minB {
		maxB = 10 * time.Second
	}

	backoff := minB
	for {
		conn, _, err := dialer.DialContext(ctx, s.URL, nil)
		if err == nil {
			backoff = minB
			log.Info("subscribed")
			err = s.consume(ctx, conn)
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("subscription lost", zap.Error(err))
		} else {
			if ctx.Err() != nil {
				return nil
			}
			log.Debug("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		backoff *= 2
		if backoff > maxB {
			backoff = maxB
		}
	}
}

func (s *Subscriber) consume(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			_ = conn.Close()
		case <-done:
		}
	}()
	err := pump(conn, s.Mailbox)
	_ = conn.Close()
	if err == nil {
		err = errors.New("closed by peer")
	}
	return err
}
