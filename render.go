package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/astei/nbtview/view"
)

type treePrinter struct {
	name  *color.Color
	kind  *color.Color
	value *color.Color
}

// newTreePrinter colors output only when colorize is set and fatih/color's own terminal and
// NO_COLOR detection allow it.
func newTreePrinter(colorize bool) *treePrinter {
	p := &treePrinter{
		name:  color.New(color.Bold),
		kind:  color.New(color.FgCyan),
		value: color.New(color.FgYellow),
	}
	if !colorize {
		for _, c := range []*color.Color{p.name, p.kind, p.value} {
			c.DisableColor()
		}
	}
	return p
}

// print writes the visible nodes of tree, one per line, indented by depth.
func (p *treePrinter) print(w io.Writer, tree *view.Tree) error {
	for _, n := range tree.Visible() {
		marker := "  "
		if n.HasChildren() {
			marker = "+ "
			if n.Expanded() {
				marker = "- "
			}
		}

		var line strings.Builder
		line.WriteString(strings.Repeat("  ", n.Depth()))
		line.WriteString(marker)
		if name, ok := n.Name(); ok {
			line.WriteString(p.name.Sprint(name))
			line.WriteString(" ")
		}
		line.WriteString(p.kind.Sprint(n.ID().String()))
		if value := n.Value(); value != "" {
			line.WriteString(": ")
			line.WriteString(p.value.Sprint(value))
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}
