package nbt

import "unicode/utf8"

// ID is the one-byte type identifier that precedes every tag and every list element kind.
type ID byte

const (
	TagEnd ID = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

func (id ID) Valid() bool {
	return id <= TagLongArray
}

// Payload is the typed value carried by a tag. The set of implementations is closed: Byte,
// Short, Int, Long, Float, Double, ByteArray, String, *List, *Compound, IntArray and LongArray.
type Payload interface {
	ID() ID
	String() string
	payload()
}

type Byte int8
type Short int16
type Int int32
type Long int64
type Float float32
type Double float64
type ByteArray []byte
type String string
type IntArray []int32
type LongArray []int64

// List holds payloads that all share the kind Elem.
type List struct {
	Elem  ID
	Items []Payload
}

func (Byte) ID() ID      { return TagByte }
func (Short) ID() ID     { return TagShort }
func (Int) ID() ID       { return TagInt }
func (Long) ID() ID      { return TagLong }
func (Float) ID() ID     { return TagFloat }
func (Double) ID() ID    { return TagDouble }
func (ByteArray) ID() ID { return TagByteArray }
func (String) ID() ID    { return TagString }
func (*List) ID() ID     { return TagList }
func (*Compound) ID() ID { return TagCompound }
func (IntArray) ID() ID  { return TagIntArray }
func (LongArray) ID() ID { return TagLongArray }

func (Byte) payload()      {}
func (Short) payload()     {}
func (Int) payload()       {}
func (Long) payload()      {}
func (Float) payload()     {}
func (Double) payload()    {}
func (ByteArray) payload() {}
func (String) payload()    {}
func (*List) payload()     {}
func (*Compound) payload() {}
func (IntArray) payload()  {}
func (LongArray) payload() {}

// Tag is a named payload. The zero Tag, with a nil payload, is the End sentinel that
// terminates a compound.
type Tag struct {
	Name    string
	Payload Payload
}

var End = Tag{}

func NewTag(name string, p Payload) Tag {
	return Tag{Name: name, Payload: p}
}

func (t Tag) IsEnd() bool {
	return t.Payload == nil
}

func (t Tag) ID() ID {
	if t.Payload == nil {
		return TagEnd
	}
	return t.Payload.ID()
}

func (t Tag) Anonymous() bool {
	return t.Name == ""
}

// DisplayName returns the tag's name, or false if the tag is anonymous or End.
func (t Tag) DisplayName() (string, bool) {
	if t.IsEnd() || t.Anonymous() {
		return "", false
	}
	return t.Name, true
}

// Len reports the element or child count of arrays, strings (in characters), lists and
// compounds. Scalars and End have no length.
func (t Tag) Len() (int, bool) {
	return Len(t.Payload)
}

func Len(p Payload) (int, bool) {
	switch v := p.(type) {
	case ByteArray:
		return len(v), true
	case String:
		return utf8.RuneCountInString(string(v)), true
	case *List:
		return len(v.Items), true
	case *Compound:
		return v.Len(), true
	case IntArray:
		return len(v), true
	case LongArray:
		return len(v), true
	default:
		return 0, false
	}
}

// Children enumerates the child tags of a compound in decode order, or the items of a list as
// anonymous tags. Any other payload has no children.
func (t Tag) Children() []Tag {
	switch v := t.Payload.(type) {
	case *Compound:
		return v.Tags()
	case *List:
		children := make([]Tag, len(v.Items))
		for i, item := range v.Items {
			children[i] = Tag{Payload: item}
		}
		return children
	default:
		return nil
	}
}

func (t Tag) Byte() (int8, bool) {
	v, ok := t.Payload.(Byte)
	return int8(v), ok
}

func (t Tag) Short() (int16, bool) {
	v, ok := t.Payload.(Short)
	return int16(v), ok
}

func (t Tag) Int() (int32, bool) {
	v, ok := t.Payload.(Int)
	return int32(v), ok
}

func (t Tag) Long() (int64, bool) {
	v, ok := t.Payload.(Long)
	return int64(v), ok
}

// Integer widens any integral payload to int64.
func (t Tag) Integer() (int64, bool) {
	switch v := t.Payload.(type) {
	case Byte:
		return int64(v), true
	case Short:
		return int64(v), true
	case Int:
		return int64(v), true
	case Long:
		return int64(v), true
	default:
		return 0, false
	}
}

func (t Tag) Float() (float32, bool) {
	v, ok := t.Payload.(Float)
	return float32(v), ok
}

func (t Tag) Double() (float64, bool) {
	v, ok := t.Payload.(Double)
	return float64(v), ok
}

func (t Tag) ByteArray() ([]byte, bool) {
	v, ok := t.Payload.(ByteArray)
	return []byte(v), ok
}

// Text returns the value of a string payload.
func (t Tag) Text() (string, bool) {
	v, ok := t.Payload.(String)
	return string(v), ok
}

func (t Tag) List() (*List, bool) {
	v, ok := t.Payload.(*List)
	return v, ok
}

func (t Tag) Compound() (*Compound, bool) {
	v, ok := t.Payload.(*Compound)
	return v, ok
}

func (t Tag) IntArray() ([]int32, bool) {
	v, ok := t.Payload.(IntArray)
	return []int32(v), ok
}

func (t Tag) LongArray() ([]int64, bool) {
	v, ok := t.Payload.(LongArray)
	return []int64(v), ok
}
