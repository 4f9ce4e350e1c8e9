// Package source resolves input URIs into readable byte streams.
//
// A Source couples a URI with the ability to open it; a Resolver turns
// a URI into a Source. The Mux dispatches on the URI scheme so callers
// can compose file, HTTP and in-memory inputs behind a single lookup.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Source is one openable input identified by a URI.
type Source interface {
	// URI identifies the input. It also serves as the input's cache
	// identity.
	URI() string

	// Open returns the byte stream for the input. The caller is
	// responsible for closing it.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Resolver turns a URI into a Source.
type Resolver interface {
	Resolve(uri string) (Source, error)
}

// ErrUnknownScheme indicates no resolver is registered for a URI's
// scheme.
var ErrUnknownScheme = errors.New("source: unknown scheme")

// Mux dispatches resolution on the URI scheme.
type Mux struct {
	resolvers map[string]Resolver
	fallback  Resolver
}

// NewMux returns a Mux with no registered resolvers.
func NewMux() *Mux {
	return &Mux{resolvers: make(map[string]Resolver)}
}

// Handle registers a resolver for one scheme, given without "://".
func (m *Mux) Handle(scheme string, r Resolver) {
	m.resolvers[scheme] = r
}

// SetDefault registers the resolver used for URIs carrying no scheme.
func (m *Mux) SetDefault(r Resolver) {
	m.fallback = r
}

// Resolve picks the resolver for the URI's scheme and delegates to it.
func (m *Mux) Resolve(uri string) (Source, error) {
	scheme := uriScheme(uri)
	if scheme == "" {
		if m.fallback == nil {
			return nil, fmt.Errorf("%w: %q has no scheme and no default resolver is registered",
				ErrUnknownScheme, uri)
		}
		return m.fallback.Resolve(uri)
	}
	r, ok := m.resolvers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return r.Resolve(uri)
}

func uriScheme(uri string) string {
	i := strings.Index(uri, "://")
	if i < 0 {
		return ""
	}
	return uri[:i]
}
