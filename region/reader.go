package region

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/astei/nbtview/nbt"
)

// Reader gives access to the chunks of a region file held in memory. It never mutates its
// buffer after construction, so it is safe for concurrent use.
type Reader struct {
	data  []byte
	index *Index
	Name  string
}

// NewReader parses the header of a region file. The reader keeps data; callers must not
// modify it afterwards.
func NewReader(data []byte) (*Reader, error) {
	index, err := ReadIndex(data)
	if err != nil {
		return nil, errors.Wrap(err, "could not read region header")
	}
	return &Reader{data: data, index: index}, nil
}

// ReadFile loads a whole region file into memory.
func ReadFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	reader.Name = path
	return reader, nil
}

func (r *Reader) Index() *Index {
	return r.index
}

// Size is the length of the underlying region file in bytes.
func (r *Reader) Size() int {
	return len(r.data)
}

// ChunkExists reports false for coordinates outside the region rather than aliasing another slot.
func (r *Reader) ChunkExists(x, z int) bool {
	if !inRegion(x, z) {
		return false
	}
	_, ok := r.index.Entry(SlotOf(x, z))
	return ok
}

func inRegion(x, z int) bool {
	return x >= 0 && x < 32 && z >= 0 && z < 32
}

// Chunk returns the decompressed NBT bytes of the chunk at region-relative x and z.
func (r *Reader) Chunk(x, z int) ([]byte, error) {
	if !inRegion(x, z) {
		return nil, errors.Errorf("region: chunk coordinates %d,%d out of range", x, z)
	}
	entry, ok := r.index.Entry(SlotOf(x, z))
	if !ok {
		return nil, &ChunkError{Slot: SlotOf(x, z), Err: ErrNoChunk}
	}
	return ExtractChunk(r.data, entry)
}

// ReadChunk extracts and decodes the chunk at region-relative x and z.
func (r *Reader) ReadChunk(x, z int) (nbt.Tag, error) {
	raw, err := r.Chunk(x, z)
	if err != nil {
		return nbt.Tag{}, err
	}
	return decodeChunk(SlotOf(x, z), raw)
}

func decodeChunk(slot int, raw []byte) (nbt.Tag, error) {
	tag, err := nbt.Decode(raw)
	if err != nil {
		return nbt.Tag{}, &ChunkError{Slot: slot, Err: err}
	}
	return tag, nil
}

// Result is the outcome of decoding one present chunk.
type Result struct {
	Entry Entry
	// Size is the decompressed NBT length.
	Size int
	Tag  nbt.Tag
	Err  error
}

// DecodeAll decodes every present chunk using up to workers goroutines. Results are ordered by
// slot regardless of completion order. A chunk that fails to decode records its error in its
// Result; DecodeAll itself only fails if ctx is cancelled.
func (r *Reader) DecodeAll(ctx context.Context, workers int) ([]Result, error) {
	entries := r.index.Entries()
	results := make([]Result, len(entries))
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entry := range entries {
		if gctx.Err() != nil {
			break
		}
		i, entry := i, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := Result{Entry: entry}
			raw, err := ExtractChunk(r.data, entry)
			if err == nil {
				res.Size = len(raw)
				res.Tag, err = decodeChunk(entry.Slot, raw)
			}
			res.Err = err
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
