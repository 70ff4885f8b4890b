// Copyright (c) 2025 Neomantra Corp

package nrbf

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// PrimitiveKind is the .NET BinaryFormatter primitive type tag, per
// [MS-NRBF] 2.1.2.3 (PrimitiveTypeEnumeration).
type PrimitiveKind uint8

const (
	PrimitiveBool      PrimitiveKind = 1
	PrimitiveU8        PrimitiveKind = 2
	PrimitiveChar      PrimitiveKind = 3
	primitiveReserved4 PrimitiveKind = 4 // rejected
	PrimitiveDecimal   PrimitiveKind = 5
	PrimitiveF64       PrimitiveKind = 6
	PrimitiveI16       PrimitiveKind = 7
	PrimitiveI32       PrimitiveKind = 8
	PrimitiveI64       PrimitiveKind = 9
	PrimitiveI8        PrimitiveKind = 10
	PrimitiveF32       PrimitiveKind = 11
	PrimitiveTimeSpan  PrimitiveKind = 12
	PrimitiveDateTime  PrimitiveKind = 13
	PrimitiveU16       PrimitiveKind = 14
	PrimitiveU32       PrimitiveKind = 15
	PrimitiveU64       PrimitiveKind = 16
	PrimitiveNull      PrimitiveKind = 17
	PrimitiveLPString  PrimitiveKind = 18
)

// fixedWidth reports the byte width of kind's encoding when that encoding
// has a constant width known ahead of reading the value, and whether the
// kind qualifies at all (Char, Decimal, String/LPString, Null, DateTime and
// TimeSpan do not: DateTime/TimeSpan are fixed-width in the wire format but
// are excluded from overwrite).
func (k PrimitiveKind) fixedWidth() (int, bool) {
	switch k {
	case PrimitiveBool, PrimitiveU8, PrimitiveI8:
		return 1, true
	case PrimitiveI16, PrimitiveU16:
		return 2, true
	case PrimitiveI32, PrimitiveU32, PrimitiveF32:
		return 4, true
	case PrimitiveI64, PrimitiveU64, PrimitiveF64:
		return 8, true
	default:
		return 0, false
	}
}

// isBulkReadable reports whether the kind has a fixed-width native
// encoding suitable for contiguous bulk reads in ArraySinglePrimitive /
// rectangular BinaryArray (spec.md section 4.6): any primitive except
// Char, Decimal, String, Null, DateTime and TimeSpan.
func (k PrimitiveKind) isBulkReadable() bool {
	switch k {
	case PrimitiveChar, PrimitiveDecimal, PrimitiveLPString, PrimitiveNull, PrimitiveDateTime, PrimitiveTimeSpan:
		return false
	default:
		return true
	}
}

// readPrimitive decodes one value of the given kind from c.
func readPrimitive(c *cursor, kind PrimitiveKind) (Value, error) {
	switch kind {
	case PrimitiveBool:
		b, err := c.readBool()
		return Value{Kind: KindBool, Bool: b}, err
	case PrimitiveU8:
		b, err := c.readU8()
		return Value{Kind: KindU8, U8: b}, err
	case PrimitiveChar:
		return readChar(c)
	case primitiveReserved4:
		return Value{}, offsetError(c.tell(), unexpectedPrimitiveKindError(kind))
	case PrimitiveDecimal:
		s, err := readLPString(c)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindDecimal, Str: s}, nil
	case PrimitiveF64:
		f, err := c.readF64LE()
		return Value{Kind: KindF64, F64: f}, err
	case PrimitiveI16:
		i, err := c.readI16LE()
		return Value{Kind: KindI16, I16: i}, err
	case PrimitiveI32:
		i, err := c.readI32LE()
		return Value{Kind: KindI32, I32: i}, err
	case PrimitiveI64:
		i, err := c.readI64LE()
		return Value{Kind: KindI64, I64: i}, err
	case PrimitiveI8:
		i, err := c.readI8()
		return Value{Kind: KindI8, I8: i}, err
	case PrimitiveF32:
		f, err := c.readF32LE()
		return Value{Kind: KindF32, F32: f}, err
	case PrimitiveTimeSpan:
		ticks, err := c.readI64LE()
		return Value{Kind: KindTimeSpan, TimeSpan: ticks}, err
	case PrimitiveDateTime:
		return readDateTime(c)
	case PrimitiveU16:
		u, err := c.readU16LE()
		return Value{Kind: KindU16, U16: u}, err
	case PrimitiveU32:
		u, err := c.readU32LE()
		return Value{Kind: KindU32, U32: u}, err
	case PrimitiveU64:
		u, err := c.readU64LE()
		return Value{Kind: KindU64, U64: u}, err
	case PrimitiveNull:
		return Null(), nil
	case PrimitiveLPString:
		s, err := readLPString(c)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	default:
		return Value{}, offsetError(c.tell(), unexpectedPrimitiveKindError(kind))
	}
}

// readChar decodes one UTF-8 scalar, one byte at a time, giving up after
// 4 bytes per spec.md section 4.2.
func readChar(c *cursor) (Value, error) {
	var buf [4]byte
	for n := 1; n <= 4; n++ {
		b, err := c.readU8()
		if err != nil {
			return Value{}, err
		}
		buf[n-1] = b
		r, size := utf8.DecodeRune(buf[:n])
		if r != utf8.RuneError || (size == n && n > 1) {
			return Value{Kind: KindChar, Char: r}, nil
		}
	}
	return Value{}, offsetError(c.tell(), ErrInvalidChar)
}

// readLPString decodes a base-128, little-endian length prefix (up to 5
// bytes, high bit continues) followed by a UTF-8 body.
func readLPString(c *cursor) (string, error) {
	var length uint32
	for i := 0; i < 5; i++ {
		b, err := c.readU8()
		if err != nil {
			return "", err
		}
		length |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			body, err := c.readExact(int(length))
			if err != nil {
				return "", err
			}
			return string(body), nil
		}
	}
	return "", offsetError(c.tell(), ErrOverflow)
}

// dateTimeKindShift / dateTimeTicksMask split the 64-bit DateTime wire
// value into its top-2-bit kind and bottom-62-bit tick count.
const (
	dateTimeKindShift = 62
	dateTimeTicksMask = (uint64(1) << dateTimeKindShift) - 1
	maxTicks          = int64(3155378975999999999) // ticks for 9999-12-31T23:59:59.9999999
)

func readDateTime(c *cursor) (Value, error) {
	raw, err := c.readU64LE()
	if err != nil {
		return Value{}, err
	}
	kind := DateTimeKind(raw >> dateTimeKindShift)
	ticks := int64(raw & dateTimeTicksMask)
	if ticks >= 1<<61 {
		ticks -= 1 << 62 // reinterpret the 62-bit field as two's complement
	}
	if ticks < 0 || ticks > maxTicks {
		ticks = 0 // saturate silently to 0001-01-01T00:00:00, per spec.md section 4.2
	}
	return Value{Kind: KindDateTime, DateTime: DateTimeValue{Ticks: ticks, Kind: kind}}, nil
}

// encodeFixedWidth renders v back into the fixed-width wire encoding that
// readPrimitive(kind) would have produced, for the overwrite facility. It
// only supports kinds where fixedWidth reports true.
func encodeFixedWidth(kind PrimitiveKind, v Value) ([]byte, error) {
	width, ok := kind.fixedWidth()
	if !ok {
		return nil, ErrEncodingRange
	}
	buf := make([]byte, width)
	switch kind {
	case PrimitiveBool:
		if v.Kind != KindBool {
			return nil, ErrEncodingRange
		}
		if v.Bool {
			buf[0] = 1
		}
	case PrimitiveU8:
		u, ok := asUint64(v)
		if !ok || u > math.MaxUint8 {
			return nil, ErrEncodingRange
		}
		buf[0] = byte(u)
	case PrimitiveI8:
		i, ok := asInt64(v)
		if !ok || i < math.MinInt8 || i > math.MaxInt8 {
			return nil, ErrEncodingRange
		}
		buf[0] = byte(int8(i))
	case PrimitiveI16:
		i, ok := asInt64(v)
		if !ok || i < math.MinInt16 || i > math.MaxInt16 {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint16(buf, uint16(int16(i)))
	case PrimitiveU16:
		u, ok := asUint64(v)
		if !ok || u > math.MaxUint16 {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint16(buf, uint16(u))
	case PrimitiveI32:
		i, ok := asInt64(v)
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint32(buf, uint32(int32(i)))
	case PrimitiveU32:
		u, ok := asUint64(v)
		if !ok || u > math.MaxUint32 {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint32(buf, uint32(u))
	case PrimitiveF32:
		if v.Kind != KindF32 {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v.F32))
	case PrimitiveI64:
		i, ok := asInt64(v)
		if !ok {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint64(buf, uint64(i))
	case PrimitiveU64:
		u, ok := asUint64(v)
		if !ok {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint64(buf, u)
	case PrimitiveF64:
		if v.Kind != KindF64 {
			return nil, ErrEncodingRange
		}
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.F64))
	default:
		return nil, ErrEncodingRange
	}
	return buf, nil
}

func asInt64(v Value) (int64, bool) {
	switch v.Kind {
	case KindI8:
		return int64(v.I8), true
	case KindI16:
		return int64(v.I16), true
	case KindI32:
		return int64(v.I32), true
	case KindI64:
		return v.I64, true
	case KindU8:
		return int64(v.U8), true
	case KindU16:
		return int64(v.U16), true
	case KindU32:
		return int64(v.U32), true
	default:
		return 0, false
	}
}

func asUint64(v Value) (uint64, bool) {
	switch v.Kind {
	case KindU8:
		return uint64(v.U8), true
	case KindU16:
		return uint64(v.U16), true
	case KindU32:
		return uint64(v.U32), true
	case KindU64:
		return v.U64, true
	case KindI8:
		if v.I8 < 0 {
			return 0, false
		}
		return uint64(v.I8), true
	case KindI16:
		if v.I16 < 0 {
			return 0, false
		}
		return uint64(v.I16), true
	case KindI32:
		if v.I32 < 0 {
			return 0, false
		}
		return uint64(v.I32), true
	default:
		return 0, false
	}
}
