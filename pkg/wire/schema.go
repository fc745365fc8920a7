package wire

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderLen is the size of the batch header in bytes.
	HeaderLen = 8

	// RecordHeaderLen is the fixed part of every record, before the message bytes.
	RecordHeaderLen = 19

	// MaxMessageLen is the largest message msg_len can describe.
	MaxMessageLen = 0xFFFF
)

// field describes one fixed-width little-endian integer of a layout.
type field[T any] struct {
	name  string
	width int
	get   func(*T) uint64
	set   func(*T, uint64)
}

// schema is an ordered list of fields with no padding between them.
type schema[T any] struct {
	fields []field[T]
	size   int
}

func newSchema[T any](fields ...field[T]) schema[T] {
	s := schema[T]{fields: fields}
	for _, f := range fields {
		switch f.width {
		case 1, 2, 4, 8:
		default:
			panic(fmt.Sprintf("wire: field %s has unsupported width %d", f.name, f.width))
		}
		s.size += f.width
	}
	return s
}

// append writes v to dst following the layout.
func (s schema[T]) append(dst []byte, v *T) []byte {
	for _, f := range s.fields {
		x := f.get(v)
		switch f.width {
		case 1:
			dst = append(dst, byte(x))
		case 2:
			dst = binary.LittleEndian.AppendUint16(dst, uint16(x))
		case 4:
			dst = binary.LittleEndian.AppendUint32(dst, uint32(x))
		case 8:
			dst = binary.LittleEndian.AppendUint64(dst, x)
		}
	}
	return dst
}

// read fills v from the start of src. It reports false if src is too short.
func (s schema[T]) read(src []byte, v *T) bool {
	if len(src) < s.size {
		return false
	}
	off := 0
	for _, f := range s.fields {
		var x uint64
		switch f.width {
		case 1:
			x = uint64(src[off])
		case 2:
			x = uint64(binary.LittleEndian.Uint16(src[off:]))
		case 4:
			x = uint64(binary.LittleEndian.Uint32(src[off:]))
		case 8:
			x = binary.LittleEndian.Uint64(src[off:])
		}
		f.set(v, x)
		off += f.width
	}
	return true
}

var headerSchema = newSchema(
	field[Header]{"magic", 4,
		func(h *Header) uint64 { return uint64(h.Magic) },
		func(h *Header, v uint64) { h.Magic = uint32(v) }},
	field[Header]{"version", 4,
		func(h *Header) uint64 { return uint64(h.Version) },
		func(h *Header, v uint64) { h.Version = uint32(v) }},
)

// recordFrame carries the msg_len field alongside the record it describes.
type recordFrame struct {
	rec    Record
	msgLen int
}

var recordSchema = newSchema(
	field[recordFrame]{"id", 8,
		func(f *recordFrame) uint64 { return f.rec.ID },
		func(f *recordFrame, v uint64) { f.rec.ID = v }},
	field[recordFrame]{"timestamp_ms", 8,
		func(f *recordFrame) uint64 { return f.rec.TimestampMs },
		func(f *recordFrame, v uint64) { f.rec.TimestampMs = v }},
	field[recordFrame]{"level", 1,
		func(f *recordFrame) uint64 { return uint64(f.rec.Level) },
		func(f *recordFrame, v uint64) { f.rec.Level = Level(v) }},
	field[recordFrame]{"code", 2,
		func(f *recordFrame) uint64 { return uint64(f.rec.Code) },
		func(f *recordFrame, v uint64) { f.rec.Code = uint16(v) }},
	field[recordFrame]{"msg_len", 2,
		func(f *recordFrame) uint64 { return uint64(f.msgLen) },
		func(f *recordFrame, v uint64) { f.msgLen = int(v) }},
)
