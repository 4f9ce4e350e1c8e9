package event_test

import (
	"reflect"
	"testing"

	"github.com/shapestone/shape-csvxml/pkg/event"
)

func TestRecorder_CapturesSequence(t *testing.T) {
	var r event.Recorder

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	must(r.StartDocument())
	must(r.StartPrefix("ex", "urn:example"))
	must(r.StartElement(event.Name{Space: "urn:example", Local: "doc"}, nil))
	must(r.StartElement(event.Name{Space: "urn:example", Local: "item"}, []event.Attr{{Name: "number", Value: "1"}}))
	must(r.Text("a"))
	must(r.EndElement(event.Name{Space: "urn:example", Local: "item"}))
	must(r.EndElement(event.Name{Space: "urn:example", Local: "doc"}))
	must(r.EndPrefix("ex"))
	must(r.EndDocument())

	wantKinds := []event.Kind{
		event.KindStartDocument,
		event.KindStartPrefix,
		event.KindStartElement,
		event.KindStartElement,
		event.KindText,
		event.KindEndElement,
		event.KindEndElement,
		event.KindEndPrefix,
		event.KindEndDocument,
	}
	if len(r.Events) != len(wantKinds) {
		t.Fatalf("expected %d events, got %d", len(wantKinds), len(r.Events))
	}
	for i, want := range wantKinds {
		if r.Events[i].Kind != want {
			t.Errorf("event %d: expected kind %s, got %s", i, want, r.Events[i].Kind)
		}
	}

	wantElements := []string{"doc", "item"}
	if got := r.Elements(); !reflect.DeepEqual(got, wantElements) {
		t.Errorf("expected elements %v, got %v", wantElements, got)
	}

	if r.Events[1].Prefix != "ex" || r.Events[1].URI != "urn:example" {
		t.Errorf("prefix event not captured: %+v", r.Events[1])
	}
	if r.Events[4].Text != "a" {
		t.Errorf("expected text %q, got %q", "a", r.Events[4].Text)
	}
}

func TestRecorder_CopiesAttrs(t *testing.T) {
	var r event.Recorder

	attrs := []event.Attr{{Name: "number", Value: "1"}}
	if err := r.StartElement(event.Name{Local: "item"}, attrs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The sink contract says attrs is only valid during the call; the
	// recorder must therefore have its own copy.
	attrs[0].Value = "mutated"

	if got := r.Events[0].Attrs[0].Value; got != "1" {
		t.Errorf("expected recorded attr value %q, got %q", "1", got)
	}
}

func TestRecorder_Reset(t *testing.T) {
	var r event.Recorder

	if err := r.StartDocument(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(r.Events))
	}

	r.Reset()

	if len(r.Events) != 0 {
		t.Errorf("expected empty recorder after reset, got %d events", len(r.Events))
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind event.Kind
		want string
	}{
		{event.KindStartDocument, "start-document"},
		{event.KindEndDocument, "end-document"},
		{event.KindStartElement, "start-element"},
		{event.KindEndElement, "end-element"},
		{event.KindText, "text"},
		{event.Kind(99), "Kind(99)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
