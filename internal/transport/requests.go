// Package transport moves request and update bytes between websocket
// connections and the mailboxes polled by the session tick. Nothing here
// touches scene state.
package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"scenelink/internal/responder"
)

const (
	wsWriteWait = 10 * time.Second
	// replyWait bounds how long a connection waits for the tick to answer.
	replyWait = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

var ErrAlreadyReplied = errors.New("request already replied")

// Request is one category request waiting for the tick to answer it.
type Request struct {
	ConnID   string
	category []byte
	reply    chan []byte
	once     sync.Once
}

func NewRequest(connID string, category []byte) *Request {
	return &Request{ConnID: connID, category: category, reply: make(chan []byte, 1)}
}

func (r *Request) Category() []byte { return r.category }

func (r *Request) Reply(buf []byte) error {
	err := ErrAlreadyReplied
	r.once.Do(func() {
		r.reply <- buf
		err = nil
	})
	return err
}

// Wait blocks until the request is answered or ctx ends.
func (r *Request) Wait(ctx context.Context) ([]byte, error) {
	select {
	case buf := <-r.reply:
		return buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RequestMailbox queues requests from every connection for the responder.
type RequestMailbox struct {
	ch chan *Request
}

func NewRequestMailbox(size int) *RequestMailbox {
	if size <= 0 {
		size = 1
	}
	return &RequestMailbox{ch: make(chan *Request, size)}
}

func (m *RequestMailbox) Post(ctx context.Context, req *Request) error {
	select {
	case m.ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poll returns a queued request without blocking.
func (m *RequestMailbox) Poll() (responder.Request, bool) {
	select {
	case req := <-m.ch:
		return req, true
	default:
		return nil, false
	}
}

// ServeRequests upgrades to a websocket and runs strict request/reply:
// each inbound message is a category name and gets exactly one binary
// reply before the next message is read.
func ServeRequests(mb *RequestMailbox, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("requests")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id := uuid.NewString()
		clog := log.With(zap.String("conn", id), zap.String("remote", r.RemoteAddr))
		clog.Info("tracer connected")
		defer clog.Info("tracer disconnected")

		ctx := r.Context()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					clog.Debug("read failed", zap.Error(err))
				}
				return
			}

			req := NewRequest(id, msg)
			if err := mb.Post(ctx, req); err != nil {
				return
			}
			waitCtx, cancel := context.WithTimeout(ctx, replyWait)
			buf, err := req.Wait(waitCtx)
			cancel()
			if err != nil {
				clog.Warn("no reply for request", zap.ByteString("category", msg), zap.Error(err))
				return
			}

			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
				clog.Debug("write failed", zap.Error(err))
				return
			}
		}
	}
}
