package csvxml

import (
	"context"
	"errors"
	"io"

	"github.com/shapestone/shape-csvxml/internal/charstream"
	"github.com/shapestone/shape-csvxml/internal/lexer"
	"github.com/shapestone/shape-csvxml/pkg/event"
	"github.com/shapestone/shape-csvxml/pkg/source"
)

// Generator converts delimited text into a structured event stream. A
// Generator owns reusable parse state and is not safe for concurrent
// use; create one per goroutine or share them through a Pool.
type Generator struct {
	opts  Options
	lopts lexer.Options
	asm   *lexer.Assembler
}

// NewGenerator validates opts and returns a reusable Generator.
func NewGenerator(opts Options) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	lopts := lexerOptions(opts)
	return &Generator{
		opts:  opts,
		lopts: lopts,
		asm:   lexer.NewAssembler(lopts),
	}, nil
}

func lexerOptions(o Options) lexer.Options {
	return lexer.Options{
		Separator:   o.Separator,
		Escape:      o.Escape,
		MaxRecords:  o.MaxRecords,
		Headers:     o.Headers,
		EmptyFields: o.EmptyFields,
		FieldNames:  o.FieldNames,
		Comments:    o.Comments == "#",
	}
}

// Options returns the configuration the Generator was built with.
func (g *Generator) Options() Options {
	return g.opts
}

// Generate opens src, converts it and emits the document into sink.
// The source stream is closed on every path.
func (g *Generator) Generate(ctx context.Context, src source.Source, sink event.Sink) error {
	rc, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()
	return g.GenerateReader(rc, sink)
}

// GenerateReader converts r and emits the document into sink. When the
// sink implements event.LocatorSetter it is handed the position tracker
// before the first event. The Generator's parse state is recycled
// afterwards so it can run again.
func (g *Generator) GenerateReader(r io.Reader, sink event.Sink) error {
	defer g.Recycle()

	cs, err := charstream.New(r, charstream.Config{
		Encoding:   g.opts.Encoding,
		BufferSize: g.opts.BufferSize,
	})
	if err != nil {
		return &OptionsError{Field: "Encoding", Message: err.Error()}
	}

	if ls, ok := sink.(event.LocatorSetter); ok {
		ls.SetLocator(cs)
	}

	if err := sink.StartDocument(); err != nil {
		return &SinkError{Event: "document start", Err: err}
	}
	pm, hasPrefix := sink.(event.PrefixMapper)
	if hasPrefix {
		if err := pm.StartPrefix(NamespacePrefix, NamespaceURI); err != nil {
			return &SinkError{Event: "prefix mapping start", Err: err}
		}
	}
	if err := sink.StartElement(nameDocument, nil); err != nil {
		return &SinkError{Event: "document element start", Err: err}
	}

	g.asm.Bind(&emitter{sink: sink})
	if err := lexer.New(cs, g.asm, g.lopts).Run(); err != nil {
		return g.classify(cs, err)
	}

	if err := sink.EndElement(nameDocument); err != nil {
		return &SinkError{Event: "document element end", Err: err}
	}
	if hasPrefix {
		if err := pm.EndPrefix(NamespacePrefix); err != nil {
			return &SinkError{Event: "prefix mapping end", Err: err}
		}
	}
	if err := sink.EndDocument(); err != nil {
		return &SinkError{Event: "document end", Err: err}
	}
	return nil
}

// classify sorts a parse failure into the public taxonomy: sink errors
// pass through unchanged, malformed input becomes a DecodeError, and
// anything else is a ReadError carrying the reader position.
func (g *Generator) classify(cs *charstream.Reader, err error) error {
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return err
	}
	if errors.Is(err, charstream.ErrMalformed) {
		return &DecodeError{Line: cs.Line(), Column: cs.Column(), Err: err}
	}
	return &ReadError{Line: cs.Line(), Column: cs.Column(), Err: err}
}

// Recycle resets the parse state so the Generator can run again. It is
// invoked automatically at the end of every GenerateReader call; a Pool
// calls it again on Put, which is harmless.
func (g *Generator) Recycle() {
	g.asm.Reset()
}
