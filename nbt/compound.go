package nbt

// Compound maps names to tags. Children keep the order they were decoded in; a repeated name
// replaces the earlier value in place, so the last write wins and the first position is kept.
type Compound struct {
	tags  []Tag
	index map[string]int
}

func NewCompound(tags ...Tag) *Compound {
	c := &Compound{index: make(map[string]int, len(tags))}
	for _, t := range tags {
		c.Put(t)
	}
	return c
}

// Put inserts t under its name. End tags are ignored.
func (c *Compound) Put(t Tag) {
	if t.IsEnd() {
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[t.Name]; ok {
		c.tags[i] = t
		return
	}
	c.index[t.Name] = len(c.tags)
	c.tags = append(c.tags, t)
}

func (c *Compound) Get(name string) (Tag, bool) {
	i, ok := c.index[name]
	if !ok {
		return Tag{}, false
	}
	return c.tags[i], true
}

func (c *Compound) Len() int {
	return len(c.tags)
}

// Tags returns the children in decode order. The returned slice is a copy.
func (c *Compound) Tags() []Tag {
	return append([]Tag(nil), c.tags...)
}

func (c *Compound) Names() []string {
	names := make([]string, len(c.tags))
	for i, t := range c.tags {
		names[i] = t.Name
	}
	return names
}
