package event

import "fmt"

// Kind discriminates recorded events.
type Kind int

const (
	KindStartDocument Kind = iota
	KindEndDocument
	KindStartPrefix
	KindEndPrefix
	KindStartElement
	KindEndElement
	KindText
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindStartDocument:
		return "start-document"
	case KindEndDocument:
		return "end-document"
	case KindStartPrefix:
		return "start-prefix"
	case KindEndPrefix:
		return "end-prefix"
	case KindStartElement:
		return "start-element"
	case KindEndElement:
		return "end-element"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// RecordedEvent is one sink call, captured. Only the fields relevant to the
// Kind are set.
type RecordedEvent struct {
	Kind   Kind
	Name   Name   // KindStartElement, KindEndElement
	Attrs  []Attr // KindStartElement
	Text   string // KindText
	Prefix string // KindStartPrefix, KindEndPrefix
	URI    string // KindStartPrefix
}

// Recorder is a Sink that captures the full event sequence in order.
//
// Two conversions of the same input with the same options produce equal
// Events slices, which makes the Recorder the reference lens for comparing
// converter output.
type Recorder struct {
	Events []RecordedEvent
}

// StartDocument records the event.
func (r *Recorder) StartDocument() error {
	r.Events = append(r.Events, RecordedEvent{Kind: KindStartDocument})
	return nil
}

// EndDocument records the event.
func (r *Recorder) EndDocument() error {
	r.Events = append(r.Events, RecordedEvent{Kind: KindEndDocument})
	return nil
}

// StartPrefix records the event.
func (r *Recorder) StartPrefix(prefix, uri string) error {
	r.Events = append(r.Events, RecordedEvent{Kind: KindStartPrefix, Prefix: prefix, URI: uri})
	return nil
}

// EndPrefix records the event.
func (r *Recorder) EndPrefix(prefix string) error {
	r.Events = append(r.Events, RecordedEvent{Kind: KindEndPrefix, Prefix: prefix})
	return nil
}

// StartElement records the event, copying attrs.
func (r *Recorder) StartElement(name Name, attrs []Attr) error {
	var copied []Attr
	if len(attrs) > 0 {
		copied = make([]Attr, len(attrs))
		copy(copied, attrs)
	}
	r.Events = append(r.Events, RecordedEvent{Kind: KindStartElement, Name: name, Attrs: copied})
	return nil
}

// EndElement records the event.
func (r *Recorder) EndElement(name Name) error {
	r.Events = append(r.Events, RecordedEvent{Kind: KindEndElement, Name: name})
	return nil
}

// Text records the event.
func (r *Recorder) Text(text string) error {
	r.Events = append(r.Events, RecordedEvent{Kind: KindText, Text: text})
	return nil
}

// Reset clears the recorder for reuse, keeping capacity.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}

// Elements returns the local names of all start-element events, in order.
func (r *Recorder) Elements() []string {
	var names []string
	for _, ev := range r.Events {
		if ev.Kind == KindStartElement {
			names = append(names, ev.Name.Local)
		}
	}
	return names
}
