package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/astei/nbtview/region"
	"github.com/astei/nbtview/view"
)

// env carries what the Before hook resolved to every command.
type env struct {
	cfg    Config
	logger log.Logger
}

func newApp(stdout, stderr io.Writer) *cli.App {
	e := &env{cfg: defaultConfig(), logger: log.NewNopLogger()}

	return &cli.App{
		Name:      "nbtview",
		Usage:     "inspects NBT documents and region files",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "TOML file with defaults", EnvVars: []string{"NBTVIEW_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", EnvVars: []string{"NBTVIEW_LOG_LEVEL"}},
			&cli.IntFlag{Name: "workers", Usage: "parallel chunk decoders", EnvVars: []string{"NBTVIEW_WORKERS"}},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if err := cfg.applyFlags(c); err != nil {
				return err
			}
			logger, err := newLogger(stderr, cfg.LogLevel)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Usage:     "print a document as a single line",
				ArgsUsage: "FILE",
				Action:    e.dump,
			},
			{
				Name:      "tree",
				Usage:     "print a document as an indented tree",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "depth", Usage: "expand nodes above this depth (-1 for all)"},
					&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
				},
				Action: e.tree,
			},
			{
				Name:      "export",
				Usage:     "write a document as JSON or CBOR",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Usage: "json or cbor"},
				},
				Action: e.export,
			},
			{
				Name:  "region",
				Usage: "inspect region (.mca) files",
				Subcommands: []*cli.Command{
					{
						Name:      "info",
						Usage:     "summarize a region header",
						ArgsUsage: "FILE",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "chunks", Usage: "list every present chunk"},
						},
						Action: e.regionInfo,
					},
					{
						Name:      "dump",
						Usage:     "decode one chunk, or all of them in slot order",
						ArgsUsage: "FILE",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "x", Usage: "region-relative chunk x"},
							&cli.IntFlag{Name: "z", Usage: "region-relative chunk z"},
						},
						Action: e.regionDump,
					},
				},
			},
			{
				Name:      "world",
				Usage:     "decode every chunk of every region file in a directory",
				ArgsUsage: "DIR",
				Action:    e.world,
			},
		},
	}
}

func argument(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.Errorf("%s: expected exactly one argument, got %d", c.Command.FullName(), c.NArg())
	}
	return c.Args().First(), nil
}

func (e *env) dump(c *cli.Context) error {
	path, err := argument(c)
	if err != nil {
		return err
	}
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	level.Debug(e.logger).Log("msg", "decoded document", "file", path, "compression", doc.Compression, "size", doc.Size)
	_, err = fmt.Fprintln(c.App.Writer, doc.Root.String())
	return err
}

func (e *env) tree(c *cli.Context) error {
	path, err := argument(c)
	if err != nil {
		return err
	}
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	depth := e.cfg.Depth
	if c.IsSet("depth") {
		depth = c.Int("depth")
	}
	colorize := e.cfg.Color && !c.Bool("no-color")

	t := view.New(doc.Root)
	t.ExpandTo(depth)
	return newTreePrinter(colorize).print(c.App.Writer, t)
}

func (e *env) export(c *cli.Context) error {
	path, err := argument(c)
	if err != nil {
		return err
	}
	format := e.cfg.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	return writeExport(c.App.Writer, doc.Root, format)
}

func (e *env) regionInfo(c *cli.Context) error {
	path, err := argument(c)
	if err != nil {
		return err
	}
	reader, err := region.ReadFile(path)
	if err != nil {
		return err
	}
	entries := reader.Index().Entries()

	var newest time.Time
	var allocated int
	for _, entry := range entries {
		allocated += entry.Sectors * region.SectorSize
		if entry.Timestamp.After(newest) {
			newest = entry.Timestamp
		}
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%s: %d of %d chunks present; %s on disk; %s allocated to chunks\n",
		path, len(entries), region.Slots, humanize.Bytes(uint64(reader.Size())), humanize.Bytes(uint64(allocated)))
	if len(entries) > 0 {
		fmt.Fprintf(w, "newest chunk written %s (%s)\n", newest.Format(time.RFC3339), humanize.Time(newest))
	}
	if c.Bool("chunks") {
		for _, entry := range entries {
			fmt.Fprintf(w, "  %2d,%-2d  slot %4d  sector %6d  x%-3d  %s\n",
				entry.X(), entry.Z(), entry.Slot, entry.Offset, entry.Sectors, entry.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

func (e *env) regionDump(c *cli.Context) error {
	path, err := argument(c)
	if err != nil {
		return err
	}
	reader, err := region.ReadFile(path)
	if err != nil {
		return err
	}
	w := c.App.Writer

	if c.IsSet("x") || c.IsSet("z") {
		x, z := c.Int("x"), c.Int("z")
		tag, err := reader.ReadChunk(x, z)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "chunk %d,%d: %s\n", x, z, tag)
		return err
	}

	results, err := reader.DecodeAll(c.Context, e.cfg.Workers)
	if err != nil {
		return err
	}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			level.Warn(e.logger).Log("msg", "could not decode chunk", "file", path, "x", res.Entry.X(), "z", res.Entry.Z(), "err", res.Err)
			continue
		}
		fmt.Fprintf(w, "chunk %d,%d: %s\n", res.Entry.X(), res.Entry.Z(), res.Tag)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d chunks failed to decode", failed, len(results))
	}
	return nil
}

func (e *env) world(c *cli.Context) error {
	root, err := argument(c)
	if err != nil {
		return err
	}
	regions, err := scanWorld(c.Context, e.logger, root, e.cfg.Workers)
	if err != nil {
		return err
	}

	w := c.App.Writer
	failed := 0
	for _, r := range regions {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %d chunks, %d failed\n", r.Path, len(r.Chunks), r.failed())
		for _, chunk := range r.Chunks {
			if chunk.Err != nil {
				failed++
				fmt.Fprintf(w, "  %2d,%-2d  error: %v\n", chunk.Entry.X(), chunk.Entry.Z(), chunk.Err)
				continue
			}
			s := chunk.Summary
			fmt.Fprintf(w, "  %2d,%-2d  pos %d,%d  data version %d  status %q  %d sections  %d entities  %s\n",
				chunk.Entry.X(), chunk.Entry.Z(), s.X, s.Z, s.DataVersion, s.Status, s.Sections, s.Entities,
				humanize.Bytes(uint64(chunk.Size)))
		}
	}
	if failed > 0 {
		return errors.Errorf("%d regions or chunks could not be read", failed)
	}
	return nil
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		level.Error(logger).Log("msg", "nbtview failed", "err", err)
		os.Exit(1)
	}
}
