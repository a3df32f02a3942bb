// Package nbttest builds NBT byte streams from the nbt tag model for use as test fixtures.
package nbttest

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/astei/nbtview/nbt"
)

// Marshal encodes t, panicking on failure. Only meant for fixtures.
func Marshal(t nbt.Tag) []byte {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(t); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes t as a complete tag: id, name and payload. The End tag is written as a single
// zero byte.
func (e *Encoder) Encode(t nbt.Tag) error {
	if t.IsEnd() {
		return e.writeByte(byte(nbt.TagEnd))
	}
	if err := e.writeTag(t.ID(), t.Name); err != nil {
		return err
	}
	return e.EncodePayload(t.Payload)
}

func (e *Encoder) EncodePayload(p nbt.Payload) error {
	switch v := p.(type) {
	case nbt.Byte:
		return e.writeByte(byte(v))
	case nbt.Short:
		return e.writeInt16(int16(v))
	case nbt.Int:
		return e.writeInt32(int32(v))
	case nbt.Long:
		return e.writeInt64(int64(v))
	case nbt.Float:
		return e.writeInt32(int32(math.Float32bits(float32(v))))
	case nbt.Double:
		return e.writeInt64(int64(math.Float64bits(float64(v))))
	case nbt.ByteArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		_, err := e.w.Write(v)
		return err
	case nbt.String:
		return e.writeString(string(v))
	case *nbt.List:
		if err := e.writeByte(byte(v.Elem)); err != nil {
			return err
		}
		if err := e.writeInt32(int32(len(v.Items))); err != nil {
			return err
		}
		for _, item := range v.Items {
			if item.ID() != v.Elem {
				return errors.Errorf("mixed types in list: found %s in list of %s", item.ID(), v.Elem)
			}
			if err := e.EncodePayload(item); err != nil {
				return err
			}
		}
		return nil
	case *nbt.Compound:
		for _, child := range v.Tags() {
			if err := e.Encode(child); err != nil {
				return err
			}
		}
		return e.writeByte(byte(nbt.TagEnd))
	case nbt.IntArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		for _, n := range v {
			if err := e.writeInt32(n); err != nil {
				return err
			}
		}
		return nil
	case nbt.LongArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		for _, n := range v {
			if err := e.writeInt64(n); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("unknown payload type %T", p)
	}
}

func (e *Encoder) writeTag(id nbt.ID, name string) error {
	if err := e.writeByte(byte(id)); err != nil {
		return err
	}
	return e.writeString(name)
}

func (e *Encoder) writeString(s string) error {
	if err := e.writeInt16(int16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *Encoder) writeByte(b byte) error {
	_, err := e.w.Write([]byte{b})
	return err
}

func (e *Encoder) writeInt16(n int16) error {
	_, err := e.w.Write([]byte{byte(n >> 8), byte(n)})
	return err
}

func (e *Encoder) writeInt32(n int32) error {
	_, err := e.w.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	return err
}

func (e *Encoder) writeInt64(n int64) error {
	_, err := e.w.Write([]byte{
		byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	return err
}
