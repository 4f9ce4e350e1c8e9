package event

import (
	"encoding/xml"
	"fmt"
	"io"
)

// XMLWriterOptions configures XML rendering.
type XMLWriterOptions struct {
	// Indent is the per-level indentation string.
	// Empty produces compact output.
	// Default: ""
	Indent string

	// Declaration controls whether an XML declaration is written before the
	// root element.
	// Default: false
	Declaration bool
}

// DefaultXMLWriterOptions returns the default rendering configuration.
func DefaultXMLWriterOptions() XMLWriterOptions {
	return XMLWriterOptions{
		Indent:      "",
		Declaration: false,
	}
}

// XMLWriter is a Sink that renders events as an XML document.
//
// Element names are qualified with the prefix of the active mapping for
// their namespace URI; namespace declarations attach to the next element
// opened after StartPrefix. Names without a mapped namespace render
// unqualified. Output is buffered and flushed by EndDocument.
type XMLWriter struct {
	w       io.Writer
	enc     *xml.Encoder
	opts    XMLWriterOptions
	prefix  map[string]string // namespace URI -> prefix
	pending []xml.Attr        // xmlns declarations awaiting the next element
	stack   []xml.Name        // open elements, for matching end tags
}

// NewXMLWriter creates an XMLWriter with default options.
func NewXMLWriter(w io.Writer) *XMLWriter {
	return NewXMLWriterWithOptions(w, DefaultXMLWriterOptions())
}

// NewXMLWriterWithOptions creates an XMLWriter with custom options.
//
// Example:
//
//	opts := event.DefaultXMLWriterOptions()
//	opts.Indent = "  "
//	opts.Declaration = true
//	sink := event.NewXMLWriterWithOptions(os.Stdout, opts)
func NewXMLWriterWithOptions(w io.Writer, opts XMLWriterOptions) *XMLWriter {
	enc := xml.NewEncoder(w)
	if opts.Indent != "" {
		enc.Indent("", opts.Indent)
	}
	return &XMLWriter{
		w:      w,
		enc:    enc,
		opts:   opts,
		prefix: make(map[string]string),
	}
}

// StartDocument writes the XML declaration when enabled.
func (x *XMLWriter) StartDocument() error {
	if x.opts.Declaration {
		if _, err := io.WriteString(x.w, xml.Header); err != nil {
			return err
		}
	}
	return nil
}

// EndDocument flushes buffered output. Unclosed elements are an error.
func (x *XMLWriter) EndDocument() error {
	if len(x.stack) > 0 {
		return fmt.Errorf("event: document ended with %d open element(s)", len(x.stack))
	}
	return x.enc.Flush()
}

// StartPrefix maps uri to prefix and schedules its xmlns declaration for
// the next opened element.
func (x *XMLWriter) StartPrefix(prefix, uri string) error {
	x.prefix[uri] = prefix
	x.pending = append(x.pending, xml.Attr{
		Name:  xml.Name{Local: "xmlns:" + prefix},
		Value: uri,
	})
	return nil
}

// EndPrefix removes the mapping for prefix.
func (x *XMLWriter) EndPrefix(prefix string) error {
	for uri, p := range x.prefix {
		if p == prefix {
			delete(x.prefix, uri)
		}
	}
	return nil
}

// StartElement opens an element. Pending namespace declarations come
// first, then attrs in their given order.
func (x *XMLWriter) StartElement(name Name, attrs []Attr) error {
	xn := x.qualify(name)
	start := xml.StartElement{Name: xn}
	if len(x.pending) > 0 {
		start.Attr = append(start.Attr, x.pending...)
		x.pending = nil
	}
	for _, a := range attrs {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: a.Name},
			Value: a.Value,
		})
	}
	x.stack = append(x.stack, xn)
	return x.enc.EncodeToken(start)
}

// EndElement closes the innermost open element.
func (x *XMLWriter) EndElement(name Name) error {
	n := len(x.stack)
	if n == 0 {
		return fmt.Errorf("event: end of element %q with nothing open", name.Local)
	}
	top := x.stack[n-1]
	x.stack = x.stack[:n-1]
	return x.enc.EncodeToken(xml.EndElement{Name: top})
}

// Text writes character data, escaped for XML.
func (x *XMLWriter) Text(text string) error {
	return x.enc.EncodeToken(xml.CharData(text))
}

// qualify folds the mapped prefix into the local name so the encoder emits
// the qualified form verbatim. encoding/xml would otherwise rewrite
// namespaced names with its own xmlns attributes.
func (x *XMLWriter) qualify(name Name) xml.Name {
	if name.Space != "" {
		if p, ok := x.prefix[name.Space]; ok && p != "" {
			return xml.Name{Local: p + ":" + name.Local}
		}
	}
	return xml.Name{Local: name.Local}
}
