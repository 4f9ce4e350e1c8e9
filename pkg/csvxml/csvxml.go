// Package csvxml converts delimited text (CSV and its separator
// variants) into a namespaced XML document, streamed as structured
// events.
//
// The converter is a single-pass character automaton: fields accumulate
// between separators, an escape character opens quoted sections in
// which separators and line terminators are literal, and each row
// becomes a record element. The emitted document has the fixed shape
//
//	csv:document
//	  csv:header?                      (header mode only)
//	    csv:column[number]*
//	  (csv:record[number] | csv:comment)*
//	    csv:field[number, column?]*
//
// Malformed quoting is never an error: an unterminated quoted section
// runs to the end of input as literal field text.
//
// # Thread Safety
//
// The top-level Convert functions are safe for concurrent use by
// multiple goroutines; each call builds its own parse state. A
// Generator owns reusable state and is not safe for concurrent use.
// Share Generators through a Pool, or create one per goroutine.
//
// # Conversion APIs
//
// The package provides three levels of API:
//
//   - Convert(string) - converts a CSV string to an XML string
//   - ConvertReader(io.Reader, io.Writer) - streams any reader to XML
//   - Generator - emits events into any event.Sink, for callers that
//     consume the document structurally instead of as markup
//
// Use Convert for small documents already in memory, ConvertReader for
// files and network streams, and a Generator with a custom sink to
// process records without materializing XML at all.
//
// # Example usage with Convert:
//
//	xml, err := csvxml.Convert("a,b\n1,2\n")
//	if err != nil {
//	    // handle error
//	}
//	// xml is "<csv:document xmlns:csv=...>...</csv:document>"
//
// # Example usage with a Generator:
//
//	g, err := csvxml.NewGenerator(csvxml.DefaultOptions())
//	if err != nil {
//	    // handle error
//	}
//	rec := &event.Recorder{}
//	if err := g.GenerateReader(file, rec); err != nil {
//	    // handle error
//	}
//	// rec.Events holds the structural event sequence
package csvxml

import (
	"io"
	"strings"

	"github.com/shapestone/shape-csvxml/pkg/event"
)

// Convert converts a delimited-text document to compact XML with the
// default options.
//
// Example:
//
//	xml, err := csvxml.Convert("name,age\nAlice,30\nBob,25")
func Convert(input string) (string, error) {
	return ConvertWithOptions(input, DefaultOptions())
}

// ConvertWithOptions converts a delimited-text document to compact XML
// with custom options.
//
// Example:
//
//	opts := csvxml.DefaultOptions()
//	opts.Headers = true
//	opts.Separator = '\t'
//	xml, err := csvxml.ConvertWithOptions(input, opts)
func ConvertWithOptions(input string, opts Options) (string, error) {
	var sb strings.Builder
	if err := ConvertReaderWithOptions(strings.NewReader(input), &sb, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ConvertReader streams a delimited-text document from r to w as
// compact XML with the default options.
//
// The reader can be any io.Reader implementation; input is consumed in
// one pass with constant memory, so arbitrarily large documents are
// fine.
func ConvertReader(r io.Reader, w io.Writer) error {
	return ConvertReaderWithOptions(r, w, DefaultOptions())
}

// ConvertReaderWithOptions streams a delimited-text document from r to
// w as XML with custom options.
//
// Example:
//
//	opts := csvxml.DefaultOptions()
//	opts.Headers = true
//	err := csvxml.ConvertReaderWithOptions(file, os.Stdout, opts)
func ConvertReaderWithOptions(r io.Reader, w io.Writer, opts Options) error {
	g, err := NewGenerator(opts)
	if err != nil {
		return err
	}
	return g.GenerateReader(r, event.NewXMLWriter(w))
}
