// Package codec converts typed scalar field values to and from their
// canonical byte encoding. Numeric types are fixed-width big-endian so the
// bytes read the same for every external consumer regardless of platform.
package codec

import (
	"encoding/binary"
	"math"

	"github.com/litetable/litetable-sink/internal/sink"
)

// Encode serializes a scalar into its canonical byte form: UTF-8 for strings,
// fixed-width big-endian for integers and floats, a single 0x00/0x01 byte for
// booleans, and pass-through for raw bytes.
func Encode(v sink.Scalar) ([]byte, error) {
	switch v.Kind {
	case sink.KindString:
		return []byte(v.Str), nil
	case sink.KindInt32:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(v.I32))
		return buf, nil
	case sink.KindInt64:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v.I64))
		return buf, nil
	case sink.KindFloat32:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(v.F32))
		return buf, nil
	case sink.KindFloat64:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(v.F64))
		return buf, nil
	case sink.KindBool:
		if v.Bool {
			return []byte{0x01}, nil
		}
		return []byte{0x00}, nil
	case sink.KindBytes:
		return v.Bytes, nil
	}

	return nil, sink.NewError(sink.ErrEncoding, "unsupported scalar kind %d", v.Kind)
}

// Decode deserializes a byte buffer into a scalar of the requested kind. A
// buffer whose length does not match the fixed width of the kind fails.
func Decode(buf []byte, kind sink.Kind) (sink.Scalar, error) {
	switch kind {
	case sink.KindString:
		return sink.String(string(buf)), nil
	case sink.KindInt32:
		if len(buf) != 4 {
			return sink.Scalar{}, lengthError(kind, 4, len(buf))
		}
		return sink.Int32(int32(binary.BigEndian.Uint32(buf))), nil
	case sink.KindInt64:
		if len(buf) != 8 {
			return sink.Scalar{}, lengthError(kind, 8, len(buf))
		}
		return sink.Int64(int64(binary.BigEndian.Uint64(buf))), nil
	case sink.KindFloat32:
		if len(buf) != 4 {
			return sink.Scalar{}, lengthError(kind, 4, len(buf))
		}
		return sink.Float32(math.Float32frombits(binary.BigEndian.Uint32(buf))), nil
	case sink.KindFloat64:
		if len(buf) != 8 {
			return sink.Scalar{}, lengthError(kind, 8, len(buf))
		}
		return sink.Float64(math.Float64frombits(binary.BigEndian.Uint64(buf))), nil
	case sink.KindBool:
		if len(buf) != 1 {
			return sink.Scalar{}, lengthError(kind, 1, len(buf))
		}
		return sink.Bool(buf[0] != 0x00), nil
	case sink.KindBytes:
		return sink.RawBytes(buf), nil
	}

	return sink.Scalar{}, sink.NewError(sink.ErrEncoding, "unsupported scalar kind %d", kind)
}

func lengthError(kind sink.Kind, want, got int) error {
	return sink.NewError(sink.ErrEncoding, "kind %d requires %d bytes, got %d", kind, want, got)
}
