package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/astei/nbtview/region"
)

type worldChunk struct {
	Entry   region.Entry
	Summary chunkSummary
	Size    int
	Err     error
}

type worldRegion struct {
	Path   string
	Chunks []worldChunk
	Err    error
}

func (r worldRegion) failed() int {
	n := 0
	for _, c := range r.Chunks {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// findRegionFiles lists the .mca files directly inside root, sorted by name.
func findRegionFiles(logger log.Logger, root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		level.Debug(logger).Log("msg", "discovered file", "name", entry.Name())
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".mca") {
			paths = append(paths, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// scanWorld decodes every chunk of every region file in root. Region files are processed in
// parallel; results come back in file order. A region that cannot be read is reported in its
// worldRegion rather than aborting the scan.
func scanWorld(ctx context.Context, logger log.Logger, root string, workers int) ([]worldRegion, error) {
	paths, err := findRegionFiles(logger, root)
	if err != nil {
		return nil, errors.Wrap(err, "could not list region files")
	}

	results := make([]worldRegion, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = scanRegion(gctx, logger, path)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r.Chunks)
	}
	level.Info(logger).Log("msg", "scanned world", "regions", len(results), "chunks", total)
	return results, nil
}

func scanRegion(ctx context.Context, logger log.Logger, path string) worldRegion {
	out := worldRegion{Path: path}
	reader, err := region.ReadFile(path)
	if err != nil {
		level.Warn(logger).Log("msg", "unable to read region", "file", path, "err", err)
		out.Err = err
		return out
	}

	results, err := reader.DecodeAll(ctx, 1)
	if err != nil {
		out.Err = err
		return out
	}
	for _, res := range results {
		chunk := worldChunk{Entry: res.Entry, Size: res.Size, Err: res.Err}
		if res.Err == nil {
			chunk.Summary, chunk.Err = summarizeChunk(res.Tag)
		}
		if chunk.Err != nil {
			level.Warn(logger).Log("msg", "could not read chunk", "file", path, "x", res.Entry.X(), "z", res.Entry.Z(), "err", chunk.Err)
		}
		out.Chunks = append(out.Chunks, chunk)
	}
	level.Debug(logger).Log("msg", "scanned region", "file", path, "chunks", len(out.Chunks), "failed", out.failed())
	return out
}
