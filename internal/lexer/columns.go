package lexer

// Columns maps 1-based field positions to the names captured from a
// header row. Writes are accepted only until Freeze; afterwards the
// registry is read-only, so every data row observes the same names.
type Columns struct {
	names  map[int]string
	frozen bool
}

// NewColumns returns an empty, unfrozen registry.
func NewColumns() *Columns {
	return &Columns{names: make(map[int]string)}
}

// Store records the header name for a field position. Calls after
// Freeze are ignored.
func (c *Columns) Store(position int, name string) {
	if c.frozen {
		return
	}
	c.names[position] = name
}

// Name returns the header name for a field position. The boolean
// reports whether the header row defined that position; an empty header
// cell is present with an empty name.
func (c *Columns) Name(position int) (string, bool) {
	name, ok := c.names[position]
	return name, ok
}

// Len reports the number of positions the header row defined.
func (c *Columns) Len() int {
	return len(c.names)
}

// Freeze makes the registry read-only.
func (c *Columns) Freeze() {
	c.frozen = true
}

// Reset discards all names and accepts writes again.
func (c *Columns) Reset() {
	clear(c.names)
	c.frozen = false
}
