// Copyright (c) 2025 Neomantra Corp

package nrbf

import (
	"encoding/binary"
	"io"
	"math"
)

// cursor is a forward-reading view over the input NRBF stream. It tracks
// its own byte offset so that the overwrite facility can later seek back
// to a primitive value it read. Multi-byte values are little-endian, per
// [MS-NRBF].
type cursor struct {
	r      io.Reader
	ws     io.WriteSeeker // non-nil only when overwrite is enabled
	offset int64
	scratch [8]byte
}

func newCursor(r io.Reader) *cursor {
	return &cursor{r: r}
}

// newWritableCursor wraps a seekable, writable source so overwrite slots
// recorded during decoding can later be patched in place.
func newWritableCursor(rws io.ReadWriteSeeker) *cursor {
	return &cursor{r: rws, ws: rws}
}

func (c *cursor) tell() int64 {
	return c.offset
}

func (c *cursor) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, offsetError(c.offset, ErrTruncated)
	}
	c.offset += int64(n)
	return buf, nil
}

func (c *cursor) readU8() (uint8, error) {
	if _, err := io.ReadFull(c.r, c.scratch[:1]); err != nil {
		return 0, offsetError(c.offset, ErrTruncated)
	}
	c.offset++
	return c.scratch[0], nil
}

func (c *cursor) readBool() (bool, error) {
	b, err := c.readU8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (c *cursor) readI8() (int8, error) {
	b, err := c.readU8()
	return int8(b), err
}

func (c *cursor) readU16LE() (uint16, error) {
	if _, err := io.ReadFull(c.r, c.scratch[:2]); err != nil {
		return 0, offsetError(c.offset, ErrTruncated)
	}
	c.offset += 2
	return binary.LittleEndian.Uint16(c.scratch[:2]), nil
}

func (c *cursor) readI16LE() (int16, error) {
	v, err := c.readU16LE()
	return int16(v), err
}

func (c *cursor) readU32LE() (uint32, error) {
	if _, err := io.ReadFull(c.r, c.scratch[:4]); err != nil {
		return 0, offsetError(c.offset, ErrTruncated)
	}
	c.offset += 4
	return binary.LittleEndian.Uint32(c.scratch[:4]), nil
}

func (c *cursor) readI32LE() (int32, error) {
	v, err := c.readU32LE()
	return int32(v), err
}

func (c *cursor) readU64LE() (uint64, error) {
	if _, err := io.ReadFull(c.r, c.scratch[:8]); err != nil {
		return 0, offsetError(c.offset, ErrTruncated)
	}
	c.offset += 8
	return binary.LittleEndian.Uint64(c.scratch[:8]), nil
}

func (c *cursor) readI64LE() (int64, error) {
	v, err := c.readU64LE()
	return int64(v), err
}

func (c *cursor) readF32LE() (float32, error) {
	v, err := c.readU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (c *cursor) readF64LE() (float64, error) {
	v, err := c.readU64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// seekWrite writes b at absolute position pos, then restores the cursor's
// read position. Used exclusively by the overwrite facility; the cursor
// must have been constructed with newWritableCursor.
func (c *cursor) seekWrite(pos int64, b []byte) error {
	if c.ws == nil {
		return ErrNotWritable
	}
	if _, err := c.ws.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	if _, err := c.ws.Write(b); err != nil {
		return err
	}
	_, err := c.ws.Seek(c.offset, io.SeekStart)
	return err
}
