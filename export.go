package main

import (
	"io"
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/astei/nbtview/nbt"
)

// exportNode is the machine-readable form of a tag. Compound children keep decode order, which a
// JSON object could not guarantee.
type exportNode struct {
	Name     string       `json:"name,omitempty" cbor:"name,omitempty"`
	Type     string       `json:"type" cbor:"type"`
	Elem     string       `json:"elem,omitempty" cbor:"elem,omitempty"`
	Value    interface{}  `json:"value,omitempty" cbor:"value,omitempty"`
	Children []exportNode `json:"children,omitempty" cbor:"children,omitempty"`
}

func toExport(t nbt.Tag) exportNode {
	node := exportNode{Name: t.Name, Type: t.ID().String()}
	switch v := t.Payload.(type) {
	case nil:
	case nbt.Byte, nbt.Short, nbt.Int, nbt.Long, nbt.String, nbt.IntArray, nbt.LongArray:
		node.Value = v
	case nbt.Float:
		node.Value = exportFloat(float64(v), 32)
	case nbt.Double:
		node.Value = exportFloat(float64(v), 64)
	case nbt.ByteArray:
		// Unsigned numbers rather than a base64 blob, so JSON and CBOR agree.
		values := make([]int, len(v))
		for i, b := range v {
			values[i] = int(b)
		}
		node.Value = values
	case *nbt.List:
		node.Elem = v.Elem.String()
		node.Children = make([]exportNode, 0, len(v.Items))
		for _, child := range t.Children() {
			node.Children = append(node.Children, toExport(child))
		}
	case *nbt.Compound:
		node.Children = make([]exportNode, 0, v.Len())
		for _, child := range v.Tags() {
			node.Children = append(node.Children, toExport(child))
		}
	}
	return node
}

// exportFloat keeps finite values numeric; NaN and infinities have no JSON form and are written
// as strings.
func exportFloat(f float64, bits int) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	if bits == 32 {
		return float32(f)
	}
	return f
}

func writeExport(w io.Writer, t nbt.Tag, format string) error {
	node := toExport(t)
	switch format {
	case "json":
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(node), "could not encode json")
	case "cbor":
		return errors.Wrap(cbor.NewEncoder(w).Encode(node), "could not encode cbor")
	default:
		return errors.Errorf("unknown export format %q", format)
	}
}
