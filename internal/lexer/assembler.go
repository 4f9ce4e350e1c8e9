package lexer

import "unicode/utf8"

// RowKind distinguishes the header row from ordinary data rows.
type RowKind int

const (
	// RowHeader marks the first row when header processing is enabled.
	RowHeader RowKind = iota
	// RowData marks every other row.
	RowData
)

func (k RowKind) String() string {
	switch k {
	case RowHeader:
		return "header"
	case RowData:
		return "data"
	}
	return "unknown"
}

// Emitter receives structural boundaries as the assembler discovers
// them. Any error aborts the parse.
type Emitter interface {
	OpenHeader() error
	CloseHeader() error
	OpenRecord(number int) error
	CloseRecord() error
	HeaderColumn(number int, name string) error
	Field(number int, column string, hasColumn bool, text string) error
	Comment(text string) error
}

// Assembler owns the field buffer and the record bookkeeping. The lexer
// reports separators and line boundaries; the assembler decides which
// container and field events they produce.
type Assembler struct {
	em   Emitter
	cols *Columns

	kind      RowKind
	recordNum int
	fieldNum  int
	open      bool
	buf       []byte

	headers     bool
	emptyFields bool
	fieldNames  bool
}

// NewAssembler returns an assembler configured for one stream shape.
// Bind must be called before the first parse.
func NewAssembler(opts Options) *Assembler {
	a := &Assembler{
		cols:        NewColumns(),
		buf:         make([]byte, 0, 64),
		headers:     opts.Headers,
		emptyFields: opts.EmptyFields,
		fieldNames:  opts.FieldNames,
	}
	a.Reset()
	return a
}

// Bind points the assembler at the emitter for the next parse.
func (a *Assembler) Bind(em Emitter) {
	a.em = em
}

// Reset restores the pre-parse state so the assembler can be reused for
// another stream.
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
	a.cols.Reset()
	a.fieldNum = 1
	a.open = false
	if a.headers {
		a.kind = RowHeader
		a.recordNum = 0
	} else {
		a.kind = RowData
		a.recordNum = 1
	}
}

// AppendRune adds one literal character to the active field buffer.
func (a *Assembler) AppendRune(c rune) {
	a.buf = utf8.AppendRune(a.buf, c)
}

// RecordNumber reports the number the current row carries. The header
// row is number zero.
func (a *Assembler) RecordNumber() int {
	return a.recordNum
}

// CloseField finalizes the buffered text as one field. An empty buffer
// is suppressed unless empty-field emission is on; the field position
// advances either way.
func (a *Assembler) CloseField() error {
	if len(a.buf) == 0 && !a.emptyFields {
		a.fieldNum++
		return nil
	}

	if !a.open {
		var err error
		if a.kind == RowHeader {
			err = a.em.OpenHeader()
		} else {
			err = a.em.OpenRecord(a.recordNum)
		}
		if err != nil {
			return err
		}
		a.open = true
	}

	text := string(a.buf)
	a.buf = a.buf[:0]

	var err error
	if a.kind == RowHeader {
		a.cols.Store(a.fieldNum, text)
		err = a.em.HeaderColumn(a.fieldNum, text)
	} else {
		name, ok := a.cols.Name(a.fieldNum)
		err = a.em.Field(a.fieldNum, name, ok && a.fieldNames, text)
	}
	a.fieldNum++
	return err
}

// CloseRecord closes the open container, first padding a data row to
// the header width when empty fields are being emitted. The field
// position restarts at 1 for the next row. A row that never opened a
// container produces nothing.
func (a *Assembler) CloseRecord() error {
	if a.open {
		if a.kind == RowData && a.emptyFields {
			for a.fieldNum <= a.cols.Len() {
				if err := a.CloseField(); err != nil {
					return err
				}
			}
		}
		var err error
		if a.kind == RowHeader {
			err = a.em.CloseHeader()
		} else {
			err = a.em.CloseRecord()
		}
		if err != nil {
			return err
		}
		a.open = false
	}
	a.fieldNum = 1
	return nil
}

// EndOfLine finalizes the current field and row at a line terminator
// and advances the record number. Completing the header row freezes the
// column registry and switches subsequent rows to data.
func (a *Assembler) EndOfLine() error {
	if err := a.CloseField(); err != nil {
		return err
	}
	if err := a.CloseRecord(); err != nil {
		return err
	}
	a.recordNum++
	if a.kind == RowHeader {
		a.kind = RowData
		a.cols.Freeze()
	}
	return nil
}

// Flush emits whatever the end of input left behind: a buffered final
// field, then the close of a still-open row.
func (a *Assembler) Flush() error {
	if len(a.buf) > 0 {
		if err := a.CloseField(); err != nil {
			return err
		}
	}
	if a.open {
		return a.CloseRecord()
	}
	return nil
}

// Comment emits the buffered text as a stand-alone comment line. Field
// and record bookkeeping are untouched.
func (a *Assembler) Comment() error {
	text := string(a.buf)
	a.buf = a.buf[:0]
	return a.em.Comment(text)
}
