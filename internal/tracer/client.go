// Package tracer is the tracer side of the protocol: it fetches and decodes
// scene categories and publishes parameter updates.
package tracer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scenelink/internal/distribution"
	"scenelink/internal/wire"
)

const defaultTimeout = 10 * time.Second

// Client issues category requests over one request/reply connection.
// Requests are serialized; the protocol allows one in flight.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// Fetch requests one category and returns the raw reply.
func (c *Client) Fetch(ctx context.Context, category string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTimeout)
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(category)); err != nil {
		return nil, fmt.Errorf("request %s: %w", category, err)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	_, buf, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reply %s: %w", category, err)
	}
	return buf, nil
}

// Scene is every category of a host scene, decoded.
type Scene struct {
	Header    wire.Header
	Materials []wire.Material
	Textures  []wire.Texture
	Meshes    []wire.Mesh
	Nodes     []wire.Node
	Roots     []*wire.TreeNode
}

// FetchScene requests every category in order and rebuilds the hierarchy.
func (c *Client) FetchScene(ctx context.Context) (*Scene, error) {
	var s Scene
	for _, category := range distribution.Categories {
		buf, err := c.Fetch(ctx, category)
		if err != nil {
			return nil, err
		}
		switch category {
		case distribution.CategoryHeader:
			s.Header, err = wire.DecodeHeader(buf)
		case distribution.CategoryMaterials:
			s.Materials, err = wire.DecodeMaterials(buf)
		case distribution.CategoryTextures:
			s.Textures, err = wire.DecodeTextures(buf)
		case distribution.CategoryObjects:
			s.Meshes, err = wire.DecodeMeshes(buf)
		case distribution.CategoryNodes:
			s.Nodes, err = wire.DecodeNodes(buf)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", category, err)
		}
	}
	roots, err := wire.BuildTree(s.Nodes)
	if err != nil {
		return nil, fmt.Errorf("rebuild tree: %w", err)
	}
	s.Roots = roots
	return &s, nil
}

// Editables lists editable nodes in the order update object ids address
// them (object id = position + 1).
func (s *Scene) Editables() []wire.Node {
	var out []wire.Node
	for _, n := range s.Nodes {
		if n.Editable {
			out = append(out, n)
		}
	}
	return out
}
