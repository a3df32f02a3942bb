package region

import (
	"time"

	"github.com/willf/bitset"

	"github.com/astei/nbtview/nbt"
)

const (
	SectorSize = 4096
	Slots      = 1024
	HeaderSize = 2 * SectorSize
)

// Location is a raw location-table word: the high 24 bits hold the chunk's offset in sectors,
// the low 8 bits the number of sectors it occupies.
type Location uint32

func (l Location) Offset() int {
	return int(l >> 8)
}

func (l Location) Sectors() int {
	return int(l & 0xff)
}

// Empty reports whether the slot holds no chunk. Only an all-zero word is empty; a zero offset
// with a nonzero sector count is still a present entry.
func (l Location) Empty() bool {
	return l == 0
}

// Entry describes a present chunk. Offset is measured in sectors.
type Entry struct {
	Slot      int
	Offset    int
	Sectors   int
	Timestamp time.Time
}

func (e Entry) ByteOffset() int {
	return e.Offset * SectorSize
}

// X and Z are the chunk's coordinates relative to its region.
func (e Entry) X() int { return e.Slot % 32 }
func (e Entry) Z() int { return e.Slot / 32 }

// SlotOf maps region-relative chunk coordinates to a slot in the location table.
func SlotOf(x, z int) int {
	return x + z*32
}

// Index is the region header: a location table followed by a parallel timestamp table.
type Index struct {
	Locations  [Slots]Location
	Timestamps [Slots]uint32
}

// ReadIndex parses the 8 KiB region header at the start of header.
func ReadIndex(header []byte) (*Index, error) {
	c := nbt.NewCursor(header)
	if c.Remaining() < HeaderSize {
		return nil, &nbt.DecodeError{Offset: len(header), Err: nbt.ErrUnexpectedEnd, Length: HeaderSize - len(header)}
	}

	ix := &Index{}
	for i := range ix.Locations {
		word, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		ix.Locations[i] = Location(word)
	}
	for i := range ix.Timestamps {
		ts, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		ix.Timestamps[i] = ts
	}
	return ix, nil
}

// Entry returns the chunk stored in slot, or false if the slot is empty or out of range.
func (ix *Index) Entry(slot int) (Entry, bool) {
	if slot < 0 || slot >= Slots || ix.Locations[slot].Empty() {
		return Entry{}, false
	}
	loc := ix.Locations[slot]
	return Entry{
		Slot:      slot,
		Offset:    loc.Offset(),
		Sectors:   loc.Sectors(),
		Timestamp: time.Unix(int64(ix.Timestamps[slot]), 0).UTC(),
	}, true
}

// Entries returns every present chunk ordered by slot.
func (ix *Index) Entries() []Entry {
	var out []Entry
	for slot := range ix.Locations {
		if e, ok := ix.Entry(slot); ok {
			out = append(out, e)
		}
	}
	return out
}

// Present returns a bitmap with one bit set per occupied slot.
func (ix *Index) Present() *bitset.BitSet {
	set := bitset.New(Slots)
	for slot, loc := range ix.Locations {
		if !loc.Empty() {
			set.Set(uint(slot))
		}
	}
	return set
}

func (ix *Index) Count() int {
	return int(ix.Present().Count())
}
