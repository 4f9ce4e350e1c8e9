// Package lexer implements the single-pass automaton that turns a
// delimited character stream into field, record and comment boundaries.
// Characters arrive one at a time from a CharReader; boundaries are
// reported through an Assembler bound to an Emitter. The automaton has
// exactly two states, outside or inside a quoted section, and is
// permissive: a quoted section left open runs to the end of input as
// literal text.
package lexer

import "io"

// Unlimited disables the record limit.
const Unlimited = -1

// Options configures one parse of a delimited stream.
type Options struct {
	// Separator is the field delimiter. Default: ','
	Separator rune
	// Escape opens and closes quoted sections and escapes itself when
	// doubled. Default: '"'
	Escape rune
	// MaxRecords stops the parse after this many data records.
	// Default: Unlimited
	MaxRecords int
	// Headers treats the first row as the source of column names.
	// Default: false
	Headers bool
	// EmptyFields emits zero-length fields and pads each data row to
	// the header width. Default: false
	EmptyFields bool
	// FieldNames attaches the header-derived column name to each data
	// field. Default: true
	FieldNames bool
	// Comments reports lines whose first character is '#' as comment
	// events instead of records. Default: false
	Comments bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Separator:  ',',
		Escape:     '"',
		MaxRecords: Unlimited,
		FieldNames: true,
	}
}

// CharReader is the character source the lexer consumes. ReadChar
// returns io.EOF at end of input.
type CharReader interface {
	ReadChar() (rune, error)
}

// quoteState tracks whether the automaton is inside a quoted section.
type quoteState int

const (
	stateUnquoted quoteState = iota
	stateQuoted
)

func (s quoteState) toggle() quoteState {
	if s == stateUnquoted {
		return stateQuoted
	}
	return stateUnquoted
}

// Lexer drives one parse. It classifies each character and forwards
// structural boundaries to the assembler; it holds no output state of
// its own.
type Lexer struct {
	src  CharReader
	asm  *Assembler
	opts Options

	state quoteState
	prev  rune
	// lineOffset is the 0-based position within the physical line,
	// used only to detect a comment marker at the start of a line.
	lineOffset int
	pending    rune
	hasPending bool
}

// New returns a lexer reading from src and reporting into asm.
func New(src CharReader, asm *Assembler, opts Options) *Lexer {
	return &Lexer{
		src:  src,
		asm:  asm,
		opts: opts,
		prev: -1,
	}
}

// Run consumes the stream until end of input or until the record limit
// is reached, then flushes any unterminated trailing row. Reaching the
// limit is not an error; errors from the source or the emitter abort
// the parse immediately.
func (l *Lexer) Run() error {
	for {
		if l.opts.MaxRecords != Unlimited && l.asm.RecordNumber() > l.opts.MaxRecords {
			break
		}
		c, err := l.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if l.opts.Comments && l.lineOffset == 0 && c == '#' {
			if err := l.comment(); err != nil {
				return err
			}
			continue
		}
		if err := l.process(c); err != nil {
			return err
		}
	}
	return l.asm.Flush()
}

func (l *Lexer) next() (rune, error) {
	if l.hasPending {
		l.hasPending = false
		return l.pending, nil
	}
	return l.src.ReadChar()
}

// comment consumes the remainder of a comment line plus the run of line
// terminators that follows, emitting the text between the marker and
// the line end. The first character of the next row is pushed back so
// the main loop sees it at line offset zero, which lets consecutive
// comment lines chain.
func (l *Lexer) comment() error {
	for {
		c, err := l.next()
		if err == io.EOF {
			return l.asm.Comment()
		}
		if err != nil {
			return err
		}
		if c == '\r' || c == '\n' {
			break
		}
		l.asm.AppendRune(c)
	}
	for {
		c, err := l.next()
		if err == io.EOF {
			return l.asm.Comment()
		}
		if err != nil {
			return err
		}
		if c != '\r' && c != '\n' {
			l.pending = c
			l.hasPending = true
			return l.asm.Comment()
		}
	}
}

func (l *Lexer) process(c rune) error {
	switch {
	case c == l.opts.Escape:
		// A doubled escape outside a quoted section appends one
		// literal escape; the state then flips back into the section.
		if l.state == stateUnquoted && l.prev == l.opts.Escape {
			l.asm.AppendRune(l.opts.Escape)
		}
		l.state = l.state.toggle()

	case l.state == stateUnquoted && c == l.opts.Separator:
		if err := l.asm.CloseField(); err != nil {
			return err
		}

	case l.state == stateUnquoted && (c == '\r' || c == '\n'):
		// The second half of a CRLF pair, or any further terminator in
		// a run, closes nothing.
		if l.prev != '\r' && l.prev != '\n' {
			if err := l.asm.EndOfLine(); err != nil {
				return err
			}
		}
		l.lineOffset = -1

	default:
		l.asm.AppendRune(c)
	}

	l.prev = c
	l.lineOffset++
	return nil
}
