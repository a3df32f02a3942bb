package main

import (
	"github.com/pkg/errors"

	"github.com/astei/nbtview/nbt"
)

// chunkSummary is what the world scan reports per chunk. Chunks written before 1.18 keep their
// data under a "Level" compound; later ones store it at the root.
type chunkSummary struct {
	X           int64
	Z           int64
	DataVersion int64
	Status      string
	Sections    int
	Entities    int
}

func summarizeChunk(root nbt.Tag) (chunkSummary, error) {
	var s chunkSummary
	top, ok := root.Compound()
	if !ok {
		return s, errors.Errorf("chunk root is %s, not a compound", root.ID())
	}
	if dv, ok := top.Get("DataVersion"); ok {
		s.DataVersion, _ = dv.Integer()
	}

	level := top
	if wrapped, ok := top.Get("Level"); ok {
		if c, ok := wrapped.Compound(); ok {
			level = c
		}
	}

	var err error
	if s.X, err = integerField(level, "xPos"); err != nil {
		return s, err
	}
	if s.Z, err = integerField(level, "zPos"); err != nil {
		return s, err
	}
	if status, ok := level.Get("Status"); ok {
		s.Status, _ = status.Text()
	}
	for _, key := range []string{"sections", "Sections"} {
		if sections, ok := level.Get(key); ok {
			s.Sections, _ = sections.Len()
			break
		}
	}
	for _, key := range []string{"block_entities", "TileEntities", "Entities"} {
		if list, ok := level.Get(key); ok {
			n, _ := list.Len()
			s.Entities += n
		}
	}
	return s, nil
}

func integerField(c *nbt.Compound, name string) (int64, error) {
	t, ok := c.Get(name)
	if !ok {
		return 0, errors.Errorf("chunk has no %s", name)
	}
	v, ok := t.Integer()
	if !ok {
		return 0, errors.Errorf("chunk %s is %s, not an integer", name, t.ID())
	}
	return v, nil
}
