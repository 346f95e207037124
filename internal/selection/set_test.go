package selection

import (
	"reflect"
	"testing"
)

func TestToggleRemovesDeselected(t *testing.T) {
	s := New()
	s.Toggle("DL1", true)
	s.Toggle("DL2", true)
	s.Toggle("DL1", false)

	if got := s.IDs(); !reflect.DeepEqual(got, []string{"DL2"}) {
		t.Fatalf("expected [DL2], got %v", got)
	}
	if s.Has("DL1") {
		t.Fatalf("DL1 should no longer be selected")
	}
}

func TestToggleIsSetSemantics(t *testing.T) {
	s := New()
	s.Toggle("DL1", true)
	s.Toggle("DL1", true)
	s.Toggle("DL3", false)
	s.Toggle("", true)

	if s.Len() != 1 {
		t.Fatalf("expected a single entry, got %v", s.IDs())
	}
}

func TestIsEmpty(t *testing.T) {
	s := New()
	if !s.IsEmpty() {
		t.Fatalf("new set should be empty")
	}
	s.Toggle("DL1", true)
	if s.IsEmpty() {
		t.Fatalf("set should not be empty")
	}
	s.Toggle("DL1", false)
	if !s.IsEmpty() {
		t.Fatalf("set should be empty again")
	}
}

func TestIDsReturnsCopy(t *testing.T) {
	s := New()
	s.Toggle("DL1", true)
	ids := s.IDs()
	ids[0] = "mutated"
	if !s.Has("DL1") || s.IDs()[0] != "DL1" {
		t.Fatalf("caller mutation leaked into set")
	}
}
