package fragment

// Context is the running encoder state threaded through EmitMappings while
// a fragment list is serialized. Source and original line values are
// carried so every fragment can emit deltas relative to the previous
// mapped segment.
type Context struct {
	// CurrentSource and CurrentOriginalLine are the delta bases for the
	// next mapped segment. CurrentOriginalLine is 1-based.
	CurrentSource       int
	CurrentOriginalLine int
	// UnfinishedColumn is nonzero while the previously emitted fragment
	// left a generated line without a trailing newline. It is the column
	// delta the next segment on that line must open with.
	UnfinishedColumn int
	// HasSourceContent is set once any interned source supplied original
	// text.
	HasSourceContent bool

	indexOf  map[string]int
	sources  []string
	contents []*string
}

// NewContext returns encoder state positioned at the start of the mappings
// string.
func NewContext() *Context {
	return &Context{
		CurrentOriginalLine: 1,
		indexOf:             make(map[string]int),
	}
}

// EnsureSource interns a source name and returns its stable index. The
// original content recorded for a name is the one supplied first.
func (c *Context) EnsureSource(name string, content *string) int {
	if idx, ok := c.indexOf[name]; ok {
		return idx
	}
	idx := len(c.sources)
	c.indexOf[name] = idx
	c.sources = append(c.sources, name)
	c.contents = append(c.contents, content)
	if content != nil {
		c.HasSourceContent = true
	}
	return idx
}

// Sources returns the interned source names in insertion order.
func (c *Context) Sources() []string { return c.sources }

// SourcesContent returns the original content per interned source, aligned
// with Sources.
func (c *Context) SourcesContent() []*string { return c.contents }
