package main

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/astei/nbtview/nbt"
)

type documentCompression string

const (
	documentRaw  documentCompression = "none"
	documentGzip documentCompression = "gzip"
	documentZlib documentCompression = "zlib"
	documentZstd documentCompression = "zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// maxDocumentSize caps the decompressed size of a standalone document.
const maxDocumentSize = 64 << 20

// sniffCompression identifies a standalone document's compression from its first bytes. Raw NBT
// always starts with a tag id of 12 or less, so none of the magic numbers collide with it.
func sniffCompression(data []byte) documentCompression {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return documentGzip
	case len(data) >= 2 && data[0] == 0x78 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0:
		return documentZlib
	case bytes.HasPrefix(data, zstdMagic):
		return documentZstd
	default:
		return documentRaw
	}
}

func decompressDocument(data []byte) ([]byte, documentCompression, error) {
	kind := sniffCompression(data)
	var r io.ReadCloser
	var err error
	switch kind {
	case documentGzip:
		r, err = gzip.NewReader(bytes.NewReader(data))
	case documentZlib:
		r, err = zlib.NewReader(bytes.NewReader(data))
	case documentZstd:
		dec, derr := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDocumentSize))
		if derr != nil {
			return nil, kind, derr
		}
		defer dec.Close()
		out, derr := dec.DecodeAll(data, nil)
		return out, kind, errors.Wrap(derr, "could not decompress zstd document")
	default:
		return data, kind, nil
	}
	if err != nil {
		return nil, kind, errors.Wrapf(err, "could not open %s stream", kind)
	}
	defer r.Close()

	out, err := readLimited(r, maxDocumentSize)
	if err != nil {
		return nil, kind, errors.Wrapf(err, "could not decompress %s document", kind)
	}
	return out, kind, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, errors.Errorf("decompressed size exceeds %d bytes", limit)
	}
	return out, nil
}

// document is a standalone NBT file such as level.dat.
type document struct {
	Path        string
	Compression documentCompression
	Size        int
	Root        nbt.Tag
}

func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDocument(path, data)
}

func parseDocument(path string, data []byte) (*document, error) {
	raw, kind, err := decompressDocument(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	root, err := nbt.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	return &document{Path: path, Compression: kind, Size: len(raw), Root: root}, nil
}
