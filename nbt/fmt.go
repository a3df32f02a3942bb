package nbt

import (
	"strconv"
	"strings"
)

var idNames = [...]string{
	TagEnd:       "END",
	TagByte:      "BYTE",
	TagShort:     "SHORT",
	TagInt:       "INT",
	TagLong:      "LONG",
	TagFloat:     "FLOAT",
	TagDouble:    "DOUBLE",
	TagByteArray: "BYTE ARRAY",
	TagString:    "STRING",
	TagList:      "LIST",
	TagCompound:  "COMPOUND",
	TagIntArray:  "INT ARRAY",
	TagLongArray: "LONG ARRAY",
}

func (id ID) String() string {
	if !id.Valid() {
		return "UNKNOWN(" + strconv.Itoa(int(id)) + ")"
	}
	return idNames[id]
}

// String renders the tag as "<TYPE>: <payload>", or just "END". The form is meant for
// diagnostics and does not round-trip.
func (t Tag) String() string {
	if t.IsEnd() {
		return TagEnd.String()
	}
	return t.ID().String() + ": " + t.Payload.String()
}

func (v Byte) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Short) String() string  { return strconv.FormatInt(int64(v), 10) }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Long) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Double) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) String() string { return string(v) }

func (v ByteArray) String() string {
	return joinInts(len(v), func(i int) int64 { return int64(v[i]) })
}

func (v IntArray) String() string {
	return joinInts(len(v), func(i int) int64 { return int64(v[i]) })
}

func (v LongArray) String() string {
	return joinInts(len(v), func(i int) int64 { return v[i] })
}

func (v *List) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v *Compound) String() string {
	parts := make([]string, len(v.tags))
	for i, t := range v.tags {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func joinInts(n int, at func(int) int64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatInt(at(i), 10))
	}
	sb.WriteByte(']')
	return sb.String()
}
