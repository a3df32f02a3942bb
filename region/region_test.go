package region

import (
	"bytes"
	"context"
	"encoding/binary"
	"sort"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/astei/nbtview/nbt"
	"github.com/astei/nbtview/nbt/nbttest"
)

const baseTimestamp = 1700000000

// chunkPayload is what sits at a chunk's sector offset: length, method byte, data.
func chunkPayload(method Compression, data []byte) []byte {
	out := make([]byte, 5, 5+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(data)+1))
	out[4] = byte(method)
	return append(out, data...)
}

func deflate(t *testing.T, raw []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// buildRegion lays out payloads sector-aligned after the header, in slot order.
func buildRegion(payloads map[int][]byte) []byte {
	out := make([]byte, HeaderSize)
	slots := make([]int, 0, len(payloads))
	for slot := range payloads {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	for _, slot := range slots {
		p := payloads[slot]
		offset := len(out) / SectorSize
		sectors := (len(p) + SectorSize - 1) / SectorSize
		binary.BigEndian.PutUint32(out[slot*4:], uint32(offset<<8|sectors))
		binary.BigEndian.PutUint32(out[SectorSize+slot*4:], uint32(baseTimestamp+slot))
		out = append(out, p...)
		out = append(out, make([]byte, sectors*SectorSize-len(p))...)
	}
	return out
}

func chunkDoc(x, z int32) nbt.Tag {
	return nbt.NewTag("", nbt.NewCompound(
		nbt.NewTag("DataVersion", nbt.Int(3465)),
		nbt.NewTag("xPos", nbt.Int(x)),
		nbt.NewTag("zPos", nbt.Int(z)),
		nbt.NewTag("Status", nbt.String("minecraft:full")),
	))
}

func TestReadIndex(t *testing.T) {
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:], 0x00000201)
	binary.BigEndian.PutUint32(header[4:], 0x00000001)
	binary.BigEndian.PutUint32(header[4*1023:], 0x0a0b0cff)
	binary.BigEndian.PutUint32(header[SectorSize:], 1234)
	binary.BigEndian.PutUint32(header[SectorSize+4*2:], 99)

	ix, err := ReadIndex(header)
	require.NoError(t, err)

	e, ok := ix.Entry(0)
	require.True(t, ok)
	require.Equal(t, Entry{Slot: 0, Offset: 2, Sectors: 1, Timestamp: time.Unix(1234, 0).UTC()}, e)
	require.Equal(t, 2*SectorSize, e.ByteOffset())

	// Offset 0 with a sector count is present, unlike an all-zero word.
	e, ok = ix.Entry(1)
	require.True(t, ok)
	require.Equal(t, 0, e.Offset)
	require.Equal(t, 1, e.Sectors)

	// A timestamp alone does not make a chunk present.
	_, ok = ix.Entry(2)
	require.False(t, ok)
	require.Equal(t, uint32(99), ix.Timestamps[2])

	e, ok = ix.Entry(1023)
	require.True(t, ok)
	require.Equal(t, 0x0a0b0c, e.Offset)
	require.Equal(t, 0xff, e.Sectors)
	require.Equal(t, 31, e.X())
	require.Equal(t, 31, e.Z())

	_, ok = ix.Entry(-1)
	require.False(t, ok)
	_, ok = ix.Entry(Slots)
	require.False(t, ok)

	require.Equal(t, 3, ix.Count())
	require.Len(t, ix.Entries(), 3)
	present := ix.Present()
	require.True(t, present.Test(0))
	require.True(t, present.Test(1023))
	require.False(t, present.Test(2))
}

func TestReadIndexShortHeader(t *testing.T) {
	_, err := ReadIndex(make([]byte, HeaderSize-1))
	require.True(t, errors.Is(err, nbt.ErrUnexpectedEnd))

	_, err = NewReader(nil)
	require.True(t, errors.Is(err, nbt.ErrUnexpectedEnd))
}

func TestExtractChunk(t *testing.T) {
	raw := nbttest.Marshal(chunkDoc(1, 2))
	data := buildRegion(map[int][]byte{SlotOf(1, 2): chunkPayload(CompressionZlib, deflate(t, raw))})

	ix, err := ReadIndex(data)
	require.NoError(t, err)
	e, ok := ix.Entry(SlotOf(1, 2))
	require.True(t, ok)

	out, err := ExtractChunk(data, e)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestExtractChunkUnsupportedCompression(t *testing.T) {
	for _, method := range []Compression{0, CompressionGzip, 3, 4, 127, 130} {
		// The payload is not valid for any method; it must never be looked at.
		data := buildRegion(map[int][]byte{5: chunkPayload(method, []byte{0xde, 0xad})})
		e, ok := mustIndex(t, data).Entry(5)
		require.True(t, ok)

		_, err := ExtractChunk(data, e)
		require.True(t, errors.Is(err, ErrUnsupportedCompression))

		var ce *ChunkError
		require.True(t, errors.As(err, &ce))
		require.Equal(t, 5, ce.Slot)
		require.Equal(t, method, ce.Method)
	}
}

func TestExtractChunkInvalidLength(t *testing.T) {
	zero := chunkPayload(CompressionZlib, nil)
	binary.BigEndian.PutUint32(zero, 0)

	oversized := chunkPayload(CompressionZlib, []byte{1, 2, 3})
	binary.BigEndian.PutUint32(oversized, SectorSize)

	for _, p := range [][]byte{zero, oversized} {
		data := buildRegion(map[int][]byte{0: p})
		e, _ := mustIndex(t, data).Entry(0)
		_, err := ExtractChunk(data, e)
		require.True(t, errors.Is(err, ErrInvalidChunkLength), "%v", err)
	}
}

func TestExtractChunkTruncated(t *testing.T) {
	data := buildRegion(map[int][]byte{0: chunkPayload(CompressionZlib, deflate(t, []byte{0}))})
	e, _ := mustIndex(t, data).Entry(0)

	_, err := ExtractChunk(data[:e.ByteOffset()+3], e)
	require.True(t, errors.Is(err, nbt.ErrUnexpectedEnd))

	e.Offset = 1000
	_, err = ExtractChunk(data, e)
	require.True(t, errors.Is(err, nbt.ErrUnexpectedEnd))
}

func TestExtractChunkSizeLimit(t *testing.T) {
	raw := make([]byte, 4096)
	out, err := inflate(deflate(t, raw), 4096)
	require.NoError(t, err)
	require.Len(t, out, 4096)

	_, err = inflate(deflate(t, raw), 4095)
	require.Error(t, err)

	data := buildRegion(map[int][]byte{
		9: chunkPayload(CompressionZlib, deflate(t, make([]byte, MaxChunkSize+1))),
	})
	e, _ := mustIndex(t, data).Entry(9)
	_, err = ExtractChunk(data, e)
	require.True(t, errors.Is(err, ErrDecompressionFailed), "%v", err)
	require.Contains(t, err.Error(), "inflated size exceeds")
}

func TestExtractChunkCorruptStream(t *testing.T) {
	stream := deflate(t, nbttest.Marshal(chunkDoc(0, 0)))
	stream[len(stream)-1] ^= 0xff // break the adler32 trailer

	for _, p := range [][]byte{
		chunkPayload(CompressionZlib, []byte{0x00, 0x01, 0x02}),
		chunkPayload(CompressionZlib, stream),
	} {
		data := buildRegion(map[int][]byte{7: p})
		e, _ := mustIndex(t, data).Entry(7)
		_, err := ExtractChunk(data, e)
		require.True(t, errors.Is(err, ErrDecompressionFailed), "%v", err)

		var ce *ChunkError
		require.True(t, errors.As(err, &ce))
		require.Equal(t, 7, ce.Slot)
	}
}

func TestReader(t *testing.T) {
	data := buildRegion(map[int][]byte{
		SlotOf(0, 0): chunkPayload(CompressionZlib, deflate(t, nbttest.Marshal(chunkDoc(0, 0)))),
		SlotOf(3, 4): chunkPayload(CompressionZlib, deflate(t, nbttest.Marshal(chunkDoc(3, 4)))),
	})
	r, err := NewReader(data)
	require.NoError(t, err)
	require.Equal(t, len(data), r.Size())

	require.True(t, r.ChunkExists(3, 4))
	require.False(t, r.ChunkExists(4, 3))

	tag, err := r.ReadChunk(3, 4)
	require.NoError(t, err)
	require.Equal(t, chunkDoc(3, 4), tag)

	_, err = r.Chunk(4, 3)
	require.True(t, errors.Is(err, ErrNoChunk))
	_, err = r.Chunk(32, 0)
	require.Error(t, err)
}

func TestReaderOutOfRangeCoordinates(t *testing.T) {
	data := buildRegion(map[int][]byte{
		SlotOf(8, 1):  chunkPayload(CompressionZlib, deflate(t, nbttest.Marshal(chunkDoc(8, 1)))),
		SlotOf(31, 0): chunkPayload(CompressionZlib, deflate(t, nbttest.Marshal(chunkDoc(31, 0)))),
	})
	r, err := NewReader(data)
	require.NoError(t, err)
	require.True(t, r.ChunkExists(8, 1))
	require.True(t, r.ChunkExists(31, 0))

	// (40,0) and (-1,1) would otherwise land on the slots of (8,1) and (31,0).
	for _, xz := range [][2]int{{40, 0}, {-1, 1}, {0, 32}, {0, -1}} {
		require.False(t, r.ChunkExists(xz[0], xz[1]), "%v", xz)
		_, err := r.Chunk(xz[0], xz[1])
		require.Error(t, err, "%v", xz)
	}
}

func TestReaderDecodeError(t *testing.T) {
	data := buildRegion(map[int][]byte{
		9: chunkPayload(CompressionZlib, deflate(t, []byte{13, 0, 0})),
	})
	r, err := NewReader(data)
	require.NoError(t, err)

	_, err = r.ReadChunk(9, 0)
	require.True(t, errors.Is(err, nbt.ErrInvalidTagID))
	var ce *ChunkError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, 9, ce.Slot)
}

func TestDecodeAllKeepsSlotOrder(t *testing.T) {
	payloads := map[int][]byte{}
	for z := 0; z < 32; z += 3 {
		for x := 0; x < 32; x += 5 {
			payloads[SlotOf(x, z)] = chunkPayload(CompressionZlib, deflate(t, nbttest.Marshal(chunkDoc(int32(x), int32(z)))))
		}
	}
	broken := SlotOf(5, 3)
	payloads[broken] = chunkPayload(CompressionGzip, []byte{1})

	r, err := NewReader(buildRegion(payloads))
	require.NoError(t, err)

	results, err := r.DecodeAll(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, results, len(payloads))

	for i, res := range results {
		if i > 0 {
			require.Less(t, results[i-1].Entry.Slot, res.Entry.Slot)
		}
		if res.Entry.Slot == broken {
			require.True(t, errors.Is(res.Err, ErrUnsupportedCompression))
			continue
		}
		require.NoError(t, res.Err)
		require.Equal(t, chunkDoc(int32(res.Entry.X()), int32(res.Entry.Z())), res.Tag)
		require.Equal(t, time.Unix(int64(baseTimestamp+res.Entry.Slot), 0).UTC(), res.Entry.Timestamp)
		require.Positive(t, res.Size)
	}
}

func TestDecodeAllCancelled(t *testing.T) {
	r, err := NewReader(buildRegion(map[int][]byte{
		0: chunkPayload(CompressionZlib, deflate(t, nbttest.Marshal(chunkDoc(0, 0)))),
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.DecodeAll(ctx, 1)
	require.True(t, errors.Is(err, context.Canceled))
}

func mustIndex(t *testing.T, data []byte) *Index {
	ix, err := ReadIndex(data)
	require.NoError(t, err)
	return ix
}
