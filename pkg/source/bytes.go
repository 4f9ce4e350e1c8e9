package source

import (
	"bytes"
	"context"
	"io"
)

// Bytes is an in-memory Source, useful for tests and embedded inputs.
type Bytes struct {
	Name string
	Data []byte
}

// String returns an in-memory Source over a string.
func String(name, data string) Bytes {
	return Bytes{Name: name, Data: []byte(data)}
}

func (b Bytes) URI() string { return b.Name }

func (b Bytes) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}
