package region

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/astei/nbtview/nbt"
)

var ErrNoChunk = errors.New("region: chunk not found")
var ErrInvalidChunkLength = errors.New("region: invalid chunk length")
var ErrUnsupportedCompression = errors.New("region: unsupported compression method")
var ErrDecompressionFailed = errors.New("region: decompression failed")

// MaxChunkSize caps the decompressed size of a single chunk. Real chunks stay well below it.
const MaxChunkSize = 16 << 20

// Compression is the method byte that precedes each chunk payload.
type Compression byte

const (
	CompressionGzip Compression = 1
	CompressionZlib Compression = 2
)

// ChunkError ties a failure to the slot it came from.
type ChunkError struct {
	Slot   int
	Method Compression
	Err    error
}

func (e *ChunkError) Error() string {
	if errors.Is(e.Err, ErrUnsupportedCompression) {
		return fmt.Sprintf("chunk %d (%d,%d): %s %d", e.Slot, e.Slot%32, e.Slot/32, e.Err, e.Method)
	}
	return fmt.Sprintf("chunk %d (%d,%d): %s", e.Slot, e.Slot%32, e.Slot/32, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// ExtractChunk reads the chunk described by e out of a whole region file and returns its
// decompressed NBT bytes. Only zlib (method 2) is supported.
func ExtractChunk(data []byte, e Entry) ([]byte, error) {
	fail := func(err error) error {
		return &ChunkError{Slot: e.Slot, Err: err}
	}

	c := nbt.NewCursor(data)
	if _, err := c.Advance(e.ByteOffset()); err != nil {
		return nil, fail(err)
	}
	size, err := c.ReadU32()
	if err != nil {
		return nil, fail(err)
	}
	method, err := c.ReadU8()
	if err != nil {
		return nil, fail(err)
	}
	if Compression(method) != CompressionZlib {
		return nil, &ChunkError{Slot: e.Slot, Method: Compression(method), Err: ErrUnsupportedCompression}
	}
	// size covers the method byte and the compressed payload, and the whole thing has to sit
	// inside the sectors the location table assigned to it.
	if size < 1 || (e.Sectors > 0 && int64(size)+4 > int64(e.Sectors)*SectorSize) {
		return nil, fail(errors.Wrapf(ErrInvalidChunkLength, "length %d in %d sectors", size, e.Sectors))
	}
	compressed, err := c.ReadBytes(int(size - 1))
	if err != nil {
		return nil, fail(err)
	}

	out, err := inflate(compressed, MaxChunkSize)
	if err != nil {
		return nil, fail(errors.Wrap(ErrDecompressionFailed, err.Error()))
	}
	return out, nil
}

// inflate fails once the stream yields more than limit bytes.
func inflate(compressed []byte, limit int64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out bytes.Buffer
	n, err := io.Copy(&out, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, errors.Errorf("inflated size exceeds %d bytes", limit)
	}
	return out.Bytes(), nil
}
