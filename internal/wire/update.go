package wire

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type MessageType uint8

const (
	MessageParameterUpdate MessageType = iota
	MessageLock
	MessageSync
	MessagePing
	MessageResendUpdate
	MessageUndoRedoAdd
	MessageResetObject
	MessageRPC
	MessageEmpty MessageType = 255
)

func (t MessageType) String() string {
	switch t {
	case MessageParameterUpdate:
		return "parameter_update"
	case MessageLock:
		return "lock"
	case MessageSync:
		return "sync"
	case MessagePing:
		return "ping"
	case MessageResendUpdate:
		return "resend_update"
	case MessageUndoRedoAdd:
		return "undo_redo_add"
	case MessageResetObject:
		return "reset_object"
	case MessageRPC:
		return "rpc"
	case MessageEmpty:
		return "empty"
	default:
		return fmt.Sprintf("message(%d)", uint8(t))
	}
}

// Known reports whether t is a message type of the protocol.
func (t MessageType) Known() bool {
	return t <= MessageRPC || t == MessageEmpty
}

// ErrUnknownMessage is returned for message type tags outside the protocol.
var ErrUnknownMessage = errors.New("wire: unknown message type")

type ParameterType uint8

const (
	ParamNone ParameterType = iota
	ParamAction
	ParamBool
	ParamInt
	ParamFloat
	ParamVector2
	ParamVector3
	ParamVector4
	ParamQuaternion
	ParamColor
	ParamString
	ParamList
	ParamUnknown ParameterType = 100
)

// Width is the payload size of a value type. Only the numeric types the
// host can route are recognized.
func (p ParameterType) Width() (int, bool) {
	switch p {
	case ParamFloat:
		return 4, true
	case ParamVector2:
		return 8, true
	case ParamVector3:
		return 12, true
	case ParamVector4, ParamColor, ParamQuaternion:
		return 16, true
	default:
		return 0, false
	}
}

const (
	// UpdateHeaderSize covers client id, timestamp and message type.
	UpdateHeaderSize = 3
	// RecordHeaderSize covers scene id, object id, parameter id, value type
	// and declared length.
	RecordHeaderSize = 1 + 2 + 2 + 1 + 4
)

type Update struct {
	ClientID  uint8
	Timestamp uint8
	Type      MessageType
	Records   []Record

	// Body holds the undecoded remainder of non parameter-update messages.
	Body []byte
}

// Record is one parameter change. ObjectID is as sent: 1-based into the
// editable node list.
type Record struct {
	SceneID        uint8
	ObjectID       uint16
	ParameterID    uint16
	ValueType      ParameterType
	DeclaredLength uint32
	Value          []byte
}

func (r Record) Float() float32 { return NewReader(r.Value).F32() }

func (r Record) Vec2() mgl32.Vec2 { return NewReader(r.Value).Vec2() }

func (r Record) Vec3() mgl32.Vec3 { return NewReader(r.Value).Vec3() }

func (r Record) Vec4() mgl32.Vec4 { return NewReader(r.Value).Vec4() }

func (r Record) Quat() mgl32.Quat { return NewReader(r.Value).Quat() }

// DecodeUpdate parses a message from the update channel. Records are only
// parsed for parameter updates; their value width comes from the value
// type tag, never from the declared length.
func DecodeUpdate(b []byte) (Update, error) {
	if len(b) < UpdateHeaderSize {
		return Update{}, fmt.Errorf("%w: update of %d bytes is shorter than its header", ErrMalformed, len(b))
	}
	r := NewReader(b)
	u := Update{ClientID: r.U8(), Timestamp: r.U8(), Type: MessageType(r.U8())}
	if !u.Type.Known() {
		return u, fmt.Errorf("%w: %d", ErrUnknownMessage, uint8(u.Type))
	}
	if u.Type != MessageParameterUpdate {
		u.Body = r.Raw(r.Remaining())
		return u, nil
	}
	for r.Remaining() > 0 {
		rec := Record{
			SceneID:     r.U8(),
			ObjectID:    r.U16(),
			ParameterID: r.U16(),
			ValueType:   ParameterType(r.U8()),
		}
		rec.DeclaredLength = r.U32()
		if err := r.Err(); err != nil {
			return Update{}, fmt.Errorf("record %d: %w", len(u.Records), err)
		}
		width, ok := rec.ValueType.Width()
		if !ok {
			return Update{}, fmt.Errorf("%w: record %d has unsupported value type %d", ErrMalformed, len(u.Records), rec.ValueType)
		}
		rec.Value = r.Raw(width)
		if err := r.Err(); err != nil {
			return Update{}, fmt.Errorf("record %d: %w", len(u.Records), err)
		}
		u.Records = append(u.Records, rec)
	}
	return u, nil
}

// EncodeUpdate is the tracer side of DecodeUpdate. Record values must
// already have the width of their value type.
func EncodeUpdate(u Update) []byte {
	size := UpdateHeaderSize + len(u.Body)
	for _, rec := range u.Records {
		size += RecordHeaderSize + len(rec.Value)
	}
	w := NewWriter(uint32(size))
	w.U8(u.ClientID)
	w.U8(u.Timestamp)
	w.U8(uint8(u.Type))
	for _, rec := range u.Records {
		w.U8(rec.SceneID)
		w.U16(rec.ObjectID)
		w.U16(rec.ParameterID)
		w.U8(uint8(rec.ValueType))
		w.U32(rec.DeclaredLength)
		w.Raw(rec.Value)
	}
	w.Raw(u.Body)
	return w.Bytes()
}

// FloatRecord and friends build records with a matching declared length.
func FloatRecord(objectID, parameterID uint16, v float32) Record {
	w := NewWriter(4)
	w.F32(v)
	return newRecord(objectID, parameterID, ParamFloat, w.Bytes())
}

func Vec3Record(objectID, parameterID uint16, v mgl32.Vec3) Record {
	w := NewWriter(12)
	w.Vec3(v)
	return newRecord(objectID, parameterID, ParamVector3, w.Bytes())
}

func ColorRecord(objectID, parameterID uint16, v mgl32.Vec4) Record {
	w := NewWriter(16)
	w.Vec4(v)
	return newRecord(objectID, parameterID, ParamColor, w.Bytes())
}

func QuatRecord(objectID, parameterID uint16, q mgl32.Quat) Record {
	w := NewWriter(16)
	w.Quat(q)
	return newRecord(objectID, parameterID, ParamQuaternion, w.Bytes())
}

func newRecord(objectID, parameterID uint16, typ ParameterType, value []byte) Record {
	return Record{
		ObjectID:       objectID,
		ParameterID:    parameterID,
		ValueType:      typ,
		DeclaredLength: uint32(len(value)),
		Value:          value,
	}
}
