// Package view exposes a decoded tag tree the way a tree widget consumes it: one node per tag,
// children built on demand, and a per-node expanded flag that belongs to the viewer rather than
// to the tag model.
package view

import (
	"strconv"

	"github.com/astei/nbtview/nbt"
)

type Node struct {
	tag      nbt.Tag
	depth    int
	index    int
	expanded bool
	children []*Node
	built    bool
}

// Tree is the root of a view. It is not safe for concurrent use.
type Tree struct {
	Root *Node
}

func New(root nbt.Tag) *Tree {
	return &Tree{Root: &Node{tag: root, index: -1}}
}

func (n *Node) Tag() nbt.Tag {
	return n.tag
}

func (n *Node) ID() nbt.ID {
	return n.tag.ID()
}

func (n *Node) Depth() int {
	return n.depth
}

// Name is the tag's display name. List items have no name of their own, so they are labelled
// with their index instead; anonymous tags report false.
func (n *Node) Name() (string, bool) {
	if name, ok := n.tag.DisplayName(); ok {
		return name, true
	}
	if n.index >= 0 {
		return strconv.Itoa(n.index), true
	}
	return "", false
}

// HasChildren reports whether the node can be expanded.
func (n *Node) HasChildren() bool {
	switch n.tag.ID() {
	case nbt.TagList, nbt.TagCompound:
		l, _ := n.tag.Len()
		return l > 0
	default:
		return false
	}
}

// Value renders the node's own value: scalars and arrays in full, containers as a count.
func (n *Node) Value() string {
	switch n.tag.ID() {
	case nbt.TagEnd:
		return ""
	case nbt.TagList, nbt.TagCompound:
		l, _ := n.tag.Len()
		if l == 1 {
			return "1 entry"
		}
		return strconv.Itoa(l) + " entries"
	default:
		return n.tag.Payload.String()
	}
}

func (n *Node) Children() []*Node {
	if n.built {
		return n.children
	}
	n.built = true

	_, isList := n.tag.List()
	for i, child := range n.tag.Children() {
		node := &Node{tag: child, depth: n.depth + 1, index: -1}
		if isList {
			node.index = i
		}
		n.children = append(n.children, node)
	}
	return n.children
}

func (n *Node) Expanded() bool {
	return n.expanded
}

func (n *Node) SetExpanded(expanded bool) {
	n.expanded = expanded && n.HasChildren()
}

func (n *Node) Toggle() {
	n.SetExpanded(!n.expanded)
}

// ExpandTo expands every node shallower than depth and collapses the rest. Depth 0 collapses
// the whole tree; a negative depth expands all of it.
func (t *Tree) ExpandTo(depth int) {
	var walk func(n *Node)
	walk = func(n *Node) {
		n.SetExpanded(depth < 0 || n.depth < depth)
		// Nodes never built were never expanded, so there is nothing below them to collapse.
		if !n.expanded && !n.built {
			return
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(t.Root)
}

// Visible lists the nodes a viewer would show, in pre-order, descending only into expanded
// nodes.
func (t *Tree) Visible() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		if !n.expanded {
			return
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(t.Root)
	return out
}
