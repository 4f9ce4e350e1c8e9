// Package event defines the structured-event boundary of the converter.
//
// A Sink receives the shape of one converted document as an ordered sequence
// of calls: a StartDocument/EndDocument pair bracketing nested
// StartElement/EndElement pairs with Text between them. The converter never
// inspects what a sink does with an event; any error returned by a sink
// aborts the conversion that produced it.
//
// Two optional capabilities are discovered by type assertion:
//
//   - PrefixMapper: sinks that understand namespace scopes receive one
//     StartPrefix/EndPrefix pair wrapping the whole output.
//   - LocatorSetter: sinks that want line/column diagnostics receive the
//     converter's Locator before the first event.
//
// The package ships two sinks: XMLWriter renders events as an XML document,
// and Recorder captures the raw sequence for tests and programmatic
// consumers.
package event

// Name identifies an element. Space is the namespace URI and may be empty
// for documents without a namespace; Local is never empty.
type Name struct {
	Space string
	Local string
}

// Attr is a single attribute. Attribute order is meaningful and preserved
// by conforming sinks.
type Attr struct {
	Name  string
	Value string
}

// Sink consumes structural events in document order.
//
// The attrs slice passed to StartElement is only valid for the duration of
// the call; sinks that retain attributes must copy them.
type Sink interface {
	StartDocument() error
	EndDocument() error
	StartElement(name Name, attrs []Attr) error
	EndElement(name Name) error
	Text(text string) error
}

// PrefixMapper is implemented by sinks that track namespace scopes.
// StartPrefix arrives after StartDocument and before the first element;
// EndPrefix arrives after the last element and before EndDocument.
type PrefixMapper interface {
	StartPrefix(prefix, uri string) error
	EndPrefix(prefix string) error
}

// Locator reports the current reading position of the converter,
// 1-indexed. The values are only meaningful while a conversion is in
// progress.
type Locator interface {
	Line() int
	Column() int
}

// LocatorSetter is implemented by sinks that want position diagnostics.
// SetLocator is called once per conversion, before StartDocument.
type LocatorSetter interface {
	SetLocator(loc Locator)
}
