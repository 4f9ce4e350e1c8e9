package csvxml

import (
	"strconv"

	"github.com/shapestone/shape-csvxml/pkg/event"
)

// Namespace of the emitted document.
const (
	NamespaceURI    = "https://shapestone.dev/ns/csv/1.0"
	NamespacePrefix = "csv"
)

var (
	nameDocument = event.Name{Space: NamespaceURI, Local: "document"}
	nameHeader   = event.Name{Space: NamespaceURI, Local: "header"}
	nameColumn   = event.Name{Space: NamespaceURI, Local: "column"}
	nameRecord   = event.Name{Space: NamespaceURI, Local: "record"}
	nameField    = event.Name{Space: NamespaceURI, Local: "field"}
	nameComment  = event.Name{Space: NamespaceURI, Local: "comment"}
)

// emitter adapts the assembler's structural callbacks onto an event
// sink, attaching the number and column attributes. The attrs array is
// reused across calls; sinks must not retain it.
type emitter struct {
	sink  event.Sink
	attrs [2]event.Attr
}

func (e *emitter) wrap(ev string, err error) error {
	if err != nil {
		return &SinkError{Event: ev, Err: err}
	}
	return nil
}

func (e *emitter) OpenHeader() error {
	return e.wrap("header start", e.sink.StartElement(nameHeader, nil))
}

func (e *emitter) CloseHeader() error {
	return e.wrap("header end", e.sink.EndElement(nameHeader))
}

func (e *emitter) OpenRecord(number int) error {
	e.attrs[0] = event.Attr{Name: "number", Value: strconv.Itoa(number)}
	return e.wrap("record start", e.sink.StartElement(nameRecord, e.attrs[:1]))
}

func (e *emitter) CloseRecord() error {
	return e.wrap("record end", e.sink.EndElement(nameRecord))
}

func (e *emitter) HeaderColumn(number int, name string) error {
	e.attrs[0] = event.Attr{Name: "number", Value: strconv.Itoa(number)}
	if err := e.sink.StartElement(nameColumn, e.attrs[:1]); err != nil {
		return &SinkError{Event: "column start", Err: err}
	}
	if err := e.sink.Text(name); err != nil {
		return &SinkError{Event: "column text", Err: err}
	}
	return e.wrap("column end", e.sink.EndElement(nameColumn))
}

func (e *emitter) Field(number int, column string, hasColumn bool, text string) error {
	e.attrs[0] = event.Attr{Name: "number", Value: strconv.Itoa(number)}
	attrs := e.attrs[:1]
	if hasColumn {
		e.attrs[1] = event.Attr{Name: "column", Value: column}
		attrs = e.attrs[:2]
	}
	if err := e.sink.StartElement(nameField, attrs); err != nil {
		return &SinkError{Event: "field start", Err: err}
	}
	if err := e.sink.Text(text); err != nil {
		return &SinkError{Event: "field text", Err: err}
	}
	return e.wrap("field end", e.sink.EndElement(nameField))
}

func (e *emitter) Comment(text string) error {
	if err := e.sink.StartElement(nameComment, nil); err != nil {
		return &SinkError{Event: "comment start", Err: err}
	}
	if err := e.sink.Text(text); err != nil {
		return &SinkError{Event: "comment text", Err: err}
	}
	return e.wrap("comment end", e.sink.EndElement(nameComment))
}
