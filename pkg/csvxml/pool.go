package csvxml

import "sync"

// Pool hands out recycled Generators sharing one configuration. This
// reduces allocations when converting many documents, for example one
// per HTTP request.
type Pool struct {
	opts Options
	pool sync.Pool
}

// NewPool validates opts and returns a Pool producing Generators
// configured with them.
func NewPool(opts Options) (*Pool, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{opts: opts}
	p.pool.New = func() any {
		// opts are already validated, so NewGenerator cannot fail.
		g, _ := NewGenerator(opts)
		return g
	}
	return p, nil
}

// Options returns the configuration shared by the Pool's Generators.
func (p *Pool) Options() Options {
	return p.opts
}

// Get returns a ready Generator. Return it with Put when done.
func (p *Pool) Get() *Generator {
	return p.pool.Get().(*Generator)
}

// Put recycles g and returns it to the pool. Putting nil is a no-op.
func (p *Pool) Put(g *Generator) {
	if g == nil {
		return
	}
	g.Recycle()
	p.pool.Put(g)
}
