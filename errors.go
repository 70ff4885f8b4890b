// Copyright (c) 2025 Neomantra Corp

package nrbf

import "fmt"

// Sentinel errors for the NRBF decoder, matching the taxonomy of spec.md section 7.
var (
	ErrTruncated    = fmt.Errorf("nrbf: truncated stream")
	ErrBadHeader    = fmt.Errorf("nrbf: invalid or unsupported serialization header")
	ErrBadTag       = fmt.Errorf("nrbf: unrecognized record tag")
	ErrUnsupported  = fmt.Errorf("nrbf: unsupported record")
	ErrOverflow     = fmt.Errorf("nrbf: value exceeds representable range")
	ErrInvalidChar  = fmt.Errorf("nrbf: invalid UTF-8 char encoding")
	ErrDanglingRef  = fmt.Errorf("nrbf: reference to undefined object id")
	ErrDuplicateId  = fmt.Errorf("nrbf: object id defined more than once")
	ErrNotWritable  = fmt.Errorf("nrbf: no overwrite slot for member")
	ErrEncodingRange = fmt.Errorf("nrbf: value does not fit the stored primitive encoding")
	ErrSchemaMismatch = fmt.Errorf("nrbf: class schema mismatch")
)

// DecodeError wraps a sentinel error with the byte offset at which it was
// detected, so callers can locate the offending record in the stream.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("nrbf: at offset %d: %s", e.Offset, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func offsetError(offset int64, err error) error {
	return &DecodeError{Offset: offset, Err: err}
}

func badTagError(offset int64, tag byte) error {
	return &DecodeError{Offset: offset, Err: fmt.Errorf("%w: tag %d", ErrBadTag, tag)}
}

func unexpectedPrimitiveKindError(kind PrimitiveKind) error {
	return fmt.Errorf("%w: reserved or unknown primitive kind %d", ErrUnsupported, kind)
}

func schemaMemberCountError(want, got int) error {
	return fmt.Errorf("%w: expected %d members, got %d", ErrSchemaMismatch, want, got)
}

func unknownMetadataIdError(id int32) error {
	return fmt.Errorf("%w: unknown metadata id %d", ErrSchemaMismatch, id)
}

func unknownBinaryTypeError(bt BinaryType) error {
	return fmt.Errorf("%w: unknown BinaryType %d", ErrSchemaMismatch, bt)
}
