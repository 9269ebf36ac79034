// Package responder answers category requests from the tracer with
// serialized buffers, one request at a time.
package responder

import (
	"fmt"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"scenelink/internal/distribution"
	"scenelink/internal/metrics"
)

type State int

const (
	Idle State = iota
	AwaitingSend
)

func (s State) String() string {
	if s == AwaitingSend {
		return "awaiting_send"
	}
	return "idle"
}

// Request is one pending category request. Reply must be called exactly
// once.
type Request interface {
	Category() []byte
	Reply(buf []byte) error
}

// Source yields pending requests without blocking.
type Source interface {
	Poll() (Request, bool)
}

type cacheKey struct {
	generation uint64
	revision   uint64
	category   string
}

type Responder struct {
	src     Source
	state   State
	pending Request
	cache   *lru.Cache[cacheKey, []byte]
	log     *zap.Logger
}

// New returns an idle responder. cacheEntries <= 0 disables reply caching.
func New(src Source, cacheEntries int, log *zap.Logger) (*Responder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Responder{src: src, log: log.Named("responder")}
	if cacheEntries > 0 {
		cache, err := lru.New[cacheKey, []byte](cacheEntries)
		if err != nil {
			return nil, fmt.Errorf("reply cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

func (r *Responder) State() State { return r.state }

// Step polls for one request and, if one is pending, answers it from c.
// Unknown categories are answered with an empty buffer and reported as
// ErrProtocolViolation.
func (r *Responder) Step(c *distribution.Context) error {
	if r.state == Idle {
		if r.src == nil {
			return nil
		}
		req, ok := r.src.Poll()
		if !ok {
			return nil
		}
		r.pending = req
		r.state = AwaitingSend
	}

	req := r.pending
	buf, serr := r.render(c, req.Category())
	werr := req.Reply(buf)
	r.pending = nil
	r.state = Idle

	if serr != nil {
		metrics.ProtocolViolations.Inc()
		r.log.Warn("request rejected", zap.Error(serr))
		return serr
	}
	if werr != nil {
		r.log.Warn("reply failed", zap.ByteString("category", req.Category()), zap.Error(werr))
		return fmt.Errorf("send reply: %w", werr)
	}
	return nil
}

func (r *Responder) render(c *distribution.Context, raw []byte) ([]byte, error) {
	if !utf8.Valid(raw) {
		return []byte{}, fmt.Errorf("%w: category is not valid utf-8", distribution.ErrProtocolViolation)
	}
	category := string(raw)
	if c == nil {
		return []byte{}, fmt.Errorf("%w: no scene loaded", distribution.ErrProtocolViolation)
	}

	key := cacheKey{generation: c.Generation(), revision: c.Revision(), category: category}
	if r.cache != nil {
		if buf, ok := r.cache.Get(key); ok {
			metrics.ReplyCache.WithLabelValues("hit").Inc()
			r.count(category, buf)
			return buf, nil
		}
		metrics.ReplyCache.WithLabelValues("miss").Inc()
	}

	buf, err := c.Serialize(category)
	if err != nil {
		return []byte{}, err
	}
	if r.cache != nil {
		r.cache.Add(key, buf)
	}
	r.count(category, buf)
	r.log.Debug("served", zap.String("category", category), zap.Int("bytes", len(buf)))
	return buf, nil
}

func (r *Responder) count(category string, buf []byte) {
	metrics.Requests.WithLabelValues(category).Inc()
	metrics.ReplyBytes.WithLabelValues(category).Add(float64(len(buf)))
}

// Purge drops cached replies. Called after a rebuild.
func (r *Responder) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}
