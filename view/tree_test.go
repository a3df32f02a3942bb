package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astei/nbtview/nbt"
)

func sampleTree() *Tree {
	return New(nbt.NewTag("", nbt.NewCompound(
		nbt.NewTag("xPos", nbt.Int(4)),
		nbt.NewTag("sections", &nbt.List{Elem: nbt.TagCompound, Items: []nbt.Payload{
			nbt.NewCompound(nbt.NewTag("Y", nbt.Byte(-4))),
			nbt.NewCompound(),
		}}),
		nbt.NewTag("heights", nbt.LongArray{1, 2}),
	)))
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		name, ok := n.Name()
		if !ok {
			name = "<anon>"
		}
		out[i] = name
	}
	return out
}

func TestTreeStartsCollapsed(t *testing.T) {
	tree := sampleTree()
	visible := tree.Visible()
	require.Len(t, visible, 1)
	require.False(t, visible[0].Expanded())

	_, ok := tree.Root.Name()
	require.False(t, ok)
	require.Equal(t, nbt.TagCompound, tree.Root.ID())
	require.Equal(t, "3 entries", tree.Root.Value())
}

func TestTreeToggle(t *testing.T) {
	tree := sampleTree()
	tree.Root.Toggle()
	require.Equal(t, []string{"<anon>", "xPos", "sections", "heights"}, names(tree.Visible()))

	sections := tree.Root.Children()[1]
	require.Equal(t, "2 entries", sections.Value())
	sections.Toggle()
	visible := tree.Visible()
	require.Equal(t, []string{"<anon>", "xPos", "sections", "0", "1", "heights"}, names(visible))
	require.Equal(t, 2, visible[3].Depth())

	// The empty compound has nothing to expand.
	empty := sections.Children()[1]
	empty.Toggle()
	require.False(t, empty.Expanded())

	sections.Toggle()
	require.Len(t, tree.Visible(), 4)

	// Expand state lives in the view; the tag is untouched.
	require.Equal(t, tree.Root.Children()[0].Tag(), nbt.NewTag("xPos", nbt.Int(4)))
}

func TestTreeScalarValues(t *testing.T) {
	tree := sampleTree()
	children := tree.Root.Children()
	require.Equal(t, "4", children[0].Value())
	require.Equal(t, "[1, 2]", children[2].Value())
	require.False(t, children[2].HasChildren())

	children[0].SetExpanded(true)
	require.False(t, children[0].Expanded())
}

func TestTreeExpandTo(t *testing.T) {
	tree := sampleTree()
	tree.ExpandTo(-1)
	require.Len(t, tree.Visible(), 7)

	tree.ExpandTo(1)
	require.Equal(t, []string{"<anon>", "xPos", "sections", "heights"}, names(tree.Visible()))

	tree.ExpandTo(0)
	require.Len(t, tree.Visible(), 1)

	tree.ExpandTo(2)
	require.Len(t, tree.Visible(), 6)
}
