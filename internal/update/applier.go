// Package update applies parameter patches from the tracer to the live
// scene and to the wire records describing it.
package update

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"scenelink/internal/coords"
	"scenelink/internal/distribution"
	"scenelink/internal/metrics"
	"scenelink/internal/scene"
	"scenelink/internal/wire"
)

// ErrMalformedUpdate rejects a whole message. Nothing in it is applied.
var ErrMalformedUpdate = errors.New("malformed update")

type ParameterID uint16

const (
	ParamPosition ParameterID = iota
	ParamRotation
	ParamScale
	ParamLightColor
	ParamLightIntensity
	ParamLightRange
)

func (p ParameterID) String() string {
	switch p {
	case ParamPosition:
		return "position"
	case ParamRotation:
		return "rotation"
	case ParamScale:
		return "scale"
	case ParamLightColor:
		return "light_color"
	case ParamLightIntensity:
		return "light_intensity"
	case ParamLightRange:
		return "light_range"
	default:
		return "parameter_" + strconv.Itoa(int(p))
	}
}

// rangeScale converts a tracer range into the host's range convention.
const rangeScale = 2

// Source delivers raw update messages. ok is false when nothing arrived
// within timeout.
type Source interface {
	Receive(timeout time.Duration) (msg []byte, ok bool)
}

type Options struct {
	Timeout time.Duration
	// StrictLength rejects records whose declared length differs from the
	// width of their value type.
	StrictLength bool
}

type Applier struct {
	src  Source
	opts Options
	log  *zap.Logger
}

func New(src Source, opts Options, log *zap.Logger) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applier{src: src, opts: opts, log: log.Named("update")}
}

// Result summarizes one applied message.
type Result struct {
	Type    wire.MessageType
	Applied int
	Ignored int
}

// Step receives at most one message and applies it to c. A timeout or an
// empty message is a no-op.
func (a *Applier) Step(c *distribution.Context) (Result, error) {
	if a.src == nil {
		return Result{}, nil
	}
	msg, ok := a.src.Receive(a.opts.Timeout)
	if !ok || len(msg) == 0 {
		return Result{}, nil
	}
	res, err := a.Apply(c, msg)
	if err != nil {
		if errors.Is(err, distribution.ErrProtocolViolation) {
			metrics.ProtocolViolations.Inc()
		} else {
			metrics.MalformedUpdates.Inc()
		}
		a.log.Warn("update rejected", zap.Error(err), zap.Int("bytes", len(msg)))
	}
	return res, err
}

// Apply decodes msg and writes every record into c. Records are validated
// before any of them is applied. A message type outside the protocol is an
// ErrProtocolViolation.
func (a *Applier) Apply(c *distribution.Context, msg []byte) (Result, error) {
	u, err := wire.DecodeUpdate(msg)
	if errors.Is(err, wire.ErrUnknownMessage) {
		return Result{Type: u.Type}, fmt.Errorf("%w: %w", distribution.ErrProtocolViolation, err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedUpdate, err)
	}
	metrics.Updates.WithLabelValues(u.Type.String()).Inc()

	res := Result{Type: u.Type}
	if u.Type != wire.MessageParameterUpdate {
		a.log.Debug("ignoring non parameter message", zap.Stringer("type", u.Type), zap.Int("body", len(u.Body)))
		return res, nil
	}

	targets := make([]*distribution.Node, len(u.Records))
	for i, rec := range u.Records {
		node, err := c.Editable(int(rec.ObjectID) - 1)
		if err != nil {
			return res, fmt.Errorf("%w: record %d: %w", ErrMalformedUpdate, i, err)
		}
		if a.opts.StrictLength {
			width, _ := rec.ValueType.Width()
			if int(rec.DeclaredLength) != width {
				return res, fmt.Errorf("%w: record %d declares %d bytes for a %d byte value", ErrMalformedUpdate, i, rec.DeclaredLength, width)
			}
		}
		targets[i] = node
	}

	for i, rec := range u.Records {
		if a.route(c, targets[i], rec) {
			res.Applied++
			metrics.RecordsApplied.WithLabelValues(ParameterID(rec.ParameterID).String()).Inc()
			continue
		}
		res.Ignored++
		metrics.RecordsIgnored.Inc()
		a.log.Debug("unroutable record",
			zap.Uint16("object", rec.ObjectID),
			zap.Stringer("parameter", ParameterID(rec.ParameterID)),
			zap.String("node", targets[i].Name),
		)
	}
	if res.Applied > 0 {
		c.Touch()
	}
	return res, nil
}

// route writes one record and reports whether it found a valid target.
func (a *Applier) route(c *distribution.Context, n *distribution.Node, rec wire.Record) bool {
	live, ok := c.Resolve(n.Ref)
	if !ok {
		return false
	}

	switch ParameterID(rec.ParameterID) {
	case ParamPosition:
		v, ok := vec3(rec)
		if !ok {
			return false
		}
		c.TransformTarget(n).Position = v
		live.SetPosition(coords.PositionFromWire(v))
	case ParamRotation:
		if rec.ValueType != wire.ParamQuaternion && rec.ValueType != wire.ParamVector4 {
			return false
		}
		q := rec.Quat()
		c.TransformTarget(n).Rotation = q
		live.SetRotation(coords.RotationFromWire(q))
	case ParamScale:
		v, ok := vec3(rec)
		if !ok {
			return false
		}
		c.TransformTarget(n).Scale = v
		live.SetScale(v)
	case ParamLightColor:
		l, ok := lightTarget(n, live)
		if !ok {
			return false
		}
		v, ok := colour(rec)
		if !ok {
			return false
		}
		l.Color = v
		live.Light.SetColor(v)
	case ParamLightIntensity:
		l, ok := lightTarget(n, live)
		if !ok || rec.ValueType != wire.ParamFloat {
			return false
		}
		v := rec.Float()
		l.Intensity = v
		live.Light.SetIntensity(v)
	case ParamLightRange:
		l, ok := lightTarget(n, live)
		if !ok || rec.ValueType != wire.ParamFloat {
			return false
		}
		live.Light.SetRange(rec.Float() * rangeScale)
		l.Range = live.Light.Range
	default:
		return false
	}
	return true
}

func lightTarget(n *distribution.Node, live *scene.Node) (*wire.Light, bool) {
	l, ok := n.Payload.(*wire.Light)
	if !ok || live.Light == nil {
		return nil, false
	}
	return l, true
}

func vec3(rec wire.Record) (mgl32.Vec3, bool) {
	switch rec.ValueType {
	case wire.ParamVector3:
		return rec.Vec3(), true
	case wire.ParamVector4:
		return rec.Vec4().Vec3(), true
	default:
		return mgl32.Vec3{}, false
	}
}

// colour accepts rgb or rgba values; alpha is dropped.
func colour(rec wire.Record) (mgl32.Vec3, bool) {
	switch rec.ValueType {
	case wire.ParamColor, wire.ParamVector4:
		return rec.Vec4().Vec3(), true
	case wire.ParamVector3:
		return rec.Vec3(), true
	default:
		return mgl32.Vec3{}, false
	}
}
