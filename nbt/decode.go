package nbt

// MaxDepth bounds how deeply lists and compounds may nest.
const MaxDepth = 512

// Decode decodes a single tag from the start of b. Trailing bytes are left unread.
func Decode(b []byte) (Tag, error) {
	return NewDecoder(b).Decode()
}

// DecodeTag decodes one tag at the cursor's position.
func DecodeTag(c *Cursor) (Tag, error) {
	d := &Decoder{c: c}
	return d.decodeTag()
}

// DecodePayload decodes the payload of kind id at the cursor's position.
func DecodePayload(c *Cursor, id ID) (Payload, error) {
	d := &Decoder{c: c}
	return d.decodePayload(id)
}

// Decoder reads NBT from an in-memory buffer. There is no recovery: the first error ends the
// decode, since the format has nothing to resynchronize on.
type Decoder struct {
	c     *Cursor
	depth int
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{c: NewCursor(b)}
}

func (d *Decoder) Decode() (Tag, error) {
	return d.decodeTag()
}

// Offset is the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.c.Offset()
}

func (d *Decoder) decodeTag() (Tag, error) {
	start := d.c.Offset()
	raw, err := d.c.ReadU8()
	if err != nil {
		return Tag{}, err
	}
	id := ID(raw)
	if id == TagEnd {
		return End, nil
	}
	if !id.Valid() {
		return Tag{}, &DecodeError{Offset: start, Err: ErrInvalidTagID, ID: raw}
	}

	name, err := d.readString()
	if err != nil {
		return Tag{}, err
	}
	payload, err := d.decodePayload(id)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Name: name, Payload: payload}, nil
}

func (d *Decoder) decodePayload(id ID) (Payload, error) {
	switch id {
	case TagByte:
		v, err := d.c.ReadI8()
		return Byte(v), err
	case TagShort:
		v, err := d.c.ReadI16()
		return Short(v), err
	case TagInt:
		v, err := d.c.ReadI32()
		return Int(v), err
	case TagLong:
		v, err := d.c.ReadI64()
		return Long(v), err
	case TagFloat:
		v, err := d.c.ReadF32()
		return Float(v), err
	case TagDouble:
		v, err := d.c.ReadF64()
		return Double(v), err
	case TagByteArray:
		return d.readByteArray()
	case TagString:
		s, err := d.readString()
		return String(s), err
	case TagList:
		return d.readList()
	case TagCompound:
		return d.readCompound()
	case TagIntArray:
		return d.readIntArray()
	case TagLongArray:
		return d.readLongArray()
	default:
		return nil, &DecodeError{Offset: d.c.Offset(), Err: ErrInvalidTagID, ID: byte(id)}
	}
}

func (d *Decoder) readString() (string, error) {
	n, err := d.c.ReadU16()
	if err != nil {
		return "", err
	}
	return d.c.ReadUTF8(int(n))
}

// readLength reads a signed 32-bit element count and makes sure n elements of the given width
// can still be present, so a corrupt count never drives a large allocation.
func (d *Decoder) readLength(width int) (int, error) {
	start := d.c.Offset()
	n, err := d.c.ReadI32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &DecodeError{Offset: start, Err: ErrNegativeLength, Length: int(n)}
	}
	if int64(n)*int64(width) > int64(d.c.Remaining()) {
		return 0, &DecodeError{Offset: d.c.Offset(), Err: ErrUnexpectedEnd, Length: int(n) * width}
	}
	return int(n), nil
}

func (d *Decoder) readByteArray() (Payload, error) {
	n, err := d.readLength(1)
	if err != nil {
		return nil, err
	}
	b, err := d.c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	// ByteArray owns its bytes; callers may reuse the input buffer after Decode returns.
	return ByteArray(append([]byte{}, b...)), nil
}

func (d *Decoder) readIntArray() (Payload, error) {
	n, err := d.readLength(4)
	if err != nil {
		return nil, err
	}
	out := make(IntArray, n)
	for i := range out {
		if out[i], err = d.c.ReadI32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *Decoder) readLongArray() (Payload, error) {
	n, err := d.readLength(8)
	if err != nil {
		return nil, err
	}
	out := make(LongArray, n)
	for i := range out {
		if out[i], err = d.c.ReadI64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *Decoder) enter() error {
	if d.depth >= MaxDepth {
		return errAt(d.c.Offset(), ErrMaxDepth)
	}
	d.depth++
	return nil
}

func (d *Decoder) readList() (Payload, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	start := d.c.Offset()
	raw, err := d.c.ReadU8()
	if err != nil {
		return nil, err
	}
	elem := ID(raw)
	n, err := d.c.ReadI32()
	if err != nil {
		return nil, err
	}
	// An empty list never reads an element, so its element id is not checked.
	list := &List{Elem: elem}
	if n <= 0 {
		return list, nil
	}
	if !elem.Valid() || elem == TagEnd {
		return nil, &DecodeError{Offset: start, Err: ErrInvalidTagID, ID: raw}
	}
	// Every element takes at least one byte, which caps a believable count.
	if int64(n) > int64(d.c.Remaining()) {
		return nil, &DecodeError{Offset: d.c.Offset(), Err: ErrUnexpectedEnd, Length: int(n)}
	}

	list.Items = make([]Payload, 0, n)
	for i := int32(0); i < n; i++ {
		item, err := d.decodePayload(elem)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	return list, nil
}

func (d *Decoder) readCompound() (Payload, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	c := NewCompound()
	for {
		t, err := d.decodeTag()
		if err != nil {
			return nil, err
		}
		if t.IsEnd() {
			return c, nil
		}
		c.Put(t)
	}
}
