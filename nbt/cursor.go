package nbt

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Cursor is a forward-only reader over an in-memory buffer. It never copies the buffer; slices
// it hands out alias the original input. Advance is the only place bounds are enforced.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset is the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.off
}

func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// Peek returns the unread region without consuming it.
func (c *Cursor) Peek() []byte {
	return c.buf[c.off:len(c.buf):len(c.buf)]
}

// Advance consumes exactly n bytes and returns them. If fewer than n bytes remain the cursor
// does not move.
func (c *Cursor) Advance(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, &DecodeError{Offset: c.off, Err: ErrUnexpectedEnd, Length: n}
	}
	start := c.off
	c.off += n
	return c.buf[start:c.off:c.off], nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.Advance(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.Advance(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.Advance(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadI64() (int64, error) {
	b, err := c.Advance(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

func (c *Cursor) ReadF64() (float64, error) {
	v, err := c.ReadI64()
	return math.Float64frombits(uint64(v)), err
}

// ReadBytes returns a view of the next n bytes. The view shares memory with the input.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.Advance(n)
}

// ReadUTF8 decodes exactly n bytes as UTF-8. Malformed sequences fail with ErrInvalidText; they
// are never replaced.
func (c *Cursor) ReadUTF8(n int) (string, error) {
	start := c.off
	b, err := c.Advance(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errAt(start, ErrInvalidText)
	}
	return string(b), nil
}
