package tracer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scenelink/internal/wire"
)

// Publisher pushes parameter updates to a host listening for them.
type Publisher struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	clientID  uint8
	timestamp uint8
}

func DialPublisher(ctx context.Context, url string, clientID uint8) (*Publisher, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Publisher{conn: conn, clientID: clientID}, nil
}

// Send publishes one parameter-update message. The timestamp byte wraps.
func (p *Publisher) Send(records ...wire.Record) error {
	p.mu.Lock()
	ts := p.timestamp
	p.timestamp++
	p.mu.Unlock()
	return p.SendRaw(wire.EncodeUpdate(wire.Update{
		ClientID:  p.clientID,
		Timestamp: ts,
		Type:      wire.MessageParameterUpdate,
		Records:   records,
	}))
}

func (p *Publisher) SendRaw(msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(defaultTimeout)); err != nil {
		return err
	}
	if err := p.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return p.conn.Close()
}
