package ledger

import "testing"

func capacityError() RowError {
	return RowError{
		Messages:   []string{"Reserved quantity exceeds available quantity."},
		FieldNames: []string{"proposedQuantity"},
		Title:      "Please reduce the quantity to reserve",
	}
}

func TestValidationResult(t *testing.T) {
	l := New()
	if res := l.AsValidationResult(); !res.IsValid || res.ErrorMessage != "" {
		t.Fatalf("empty ledger should be valid, got %+v", res)
	}

	l.Set("PI1", capacityError())
	res := l.AsValidationResult()
	if res.IsValid {
		t.Fatalf("non-empty ledger should be invalid")
	}
	if res.ErrorMessage != InvalidMessage {
		t.Fatalf("unexpected message %q", res.ErrorMessage)
	}

	l.Clear("PI1")
	if !l.IsEmpty() {
		t.Fatalf("expected ledger empty after clear")
	}
}

func TestMergeNeverRemoves(t *testing.T) {
	l := New()
	l.Set("PI1", capacityError())
	l.Merge(map[string]RowError{"PI2": capacityError()})

	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
	l.Merge(nil)
	if l.Len() != 2 {
		t.Fatalf("empty merge should keep entries")
	}
}

func TestRetain(t *testing.T) {
	l := New()
	l.Set("PI1", capacityError())
	l.Set("PI2", capacityError())
	l.Retain([]string{"PI2", "PI9"})

	if _, ok := l.Get("PI1"); ok {
		t.Fatalf("PI1 should have been dropped")
	}
	if _, ok := l.Get("PI2"); !ok {
		t.Fatalf("PI2 should be retained")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	l := New()
	l.Set("PI1", capacityError())

	snap := l.Snapshot()
	entry := snap["PI1"]
	entry.Messages[0] = "changed"
	delete(snap, "PI1")

	got, ok := l.Get("PI1")
	if !ok || got.Messages[0] != "Reserved quantity exceeds available quantity." {
		t.Fatalf("snapshot mutation leaked: %+v", got)
	}
}

func TestEntriesSorted(t *testing.T) {
	l := New()
	l.Set("PI3", capacityError())
	l.Set("PI1", capacityError())
	entries := l.Entries()
	if len(entries) != 2 || entries[0].ProductItemID != "PI1" || entries[1].ProductItemID != "PI3" {
		t.Fatalf("unexpected order %+v", entries)
	}
}
