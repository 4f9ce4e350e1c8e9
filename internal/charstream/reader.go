// Package charstream decodes byte streams into runes with line/column
// position tracking.
package charstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMalformed reports bytes that are not valid for the configured
// encoding. The reader's Line and Column identify the offending byte.
var ErrMalformed = errors.New("malformed input for configured encoding")

// DefaultBufferSize is the read buffer size used when Config.BufferSize
// is zero.
const DefaultBufferSize = 4096

// Config configures a Reader.
type Config struct {
	// Encoding is the IANA name of the input charset.
	// Empty selects UTF-8.
	Encoding string

	// BufferSize is the size of the read buffer in bytes.
	// Default: DefaultBufferSize
	BufferSize int
}

// Reader yields runes from a byte stream.
//
// Line and Column track the position of the next unread rune, 1-indexed.
// A '\n' that is not the second half of a "\r\n" pair, or any '\r', starts
// a new line; the '\n' of a "\r\n" pair is absorbed into the line break;
// every other rune advances the column. A leading U+FEFF byte-order mark
// is discarded.
type Reader struct {
	br     *bufio.Reader
	line   int
	column int
	last   rune
	first  bool
}

// New creates a Reader over r. Unknown or unsupported encoding names fail
// immediately.
func New(r io.Reader, cfg Config) (*Reader, error) {
	size := cfg.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}

	src := r
	if cfg.Encoding != "" {
		enc, err := ianaindex.IANA.Encoding(cfg.Encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", cfg.Encoding, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("unsupported encoding %q", cfg.Encoding)
		}
		// UTF-8 aliases skip the transform so malformed sequences surface
		// as ErrMalformed instead of being substituted by the decoder.
		if enc != unicode.UTF8 {
			src = transform.NewReader(r, enc.NewDecoder())
		}
	}

	return &Reader{
		br:     bufio.NewReaderSize(src, size),
		line:   1,
		column: 1,
		last:   -1,
		first:  true,
	}, nil
}

// ReadChar returns the next rune. It returns io.EOF at end of input,
// ErrMalformed when the input is not valid for the configured encoding,
// and the underlying error for I/O failures.
func (r *Reader) ReadChar() (rune, error) {
	c, size, err := r.br.ReadRune()
	if err != nil {
		return -1, err
	}
	if c == utf8.RuneError && size == 1 {
		return -1, ErrMalformed
	}
	if r.first {
		r.first = false
		if c == 0xFEFF { // byte order mark
			return r.ReadChar()
		}
	}
	r.advance(c)
	return c, nil
}

// ReadInto fills p with up to len(p) runes and returns the count read.
// A short count with a nil error means end of input was reached after at
// least one rune; a zero count returns io.EOF.
func (r *Reader) ReadInto(p []rune) (int, error) {
	for i := range p {
		c, err := r.ReadChar()
		if err != nil {
			if err == io.EOF && i > 0 {
				return i, nil
			}
			return i, err
		}
		p[i] = c
	}
	return len(p), nil
}

// Line returns the 1-indexed line of the next unread rune.
func (r *Reader) Line() int {
	return r.line
}

// Column returns the 1-indexed column of the next unread rune.
func (r *Reader) Column() int {
	return r.column
}

// advance moves the position past a consumed rune.
func (r *Reader) advance(c rune) {
	switch {
	case c == '\n' && r.last == '\r':
		// Second half of CRLF; the '\r' already moved to the new line.
	case c == '\n' || c == '\r':
		r.line++
		r.column = 1
	default:
		r.column++
	}
	r.last = c
}
