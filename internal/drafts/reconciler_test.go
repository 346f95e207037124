package drafts

import (
	"testing"

	"github.com/OmkarVetal12/synlawn/internal/inventory"
	"github.com/shopspring/decimal"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestApplyDraftsToRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		draft     string
		available string
		wantErr   bool
	}{
		{name: "below ceiling", draft: "4", available: "10"},
		{name: "at ceiling", draft: "10", available: "10"},
		{name: "fraction", draft: "2.75", available: "3"},
		{name: "above ceiling", draft: "15", available: "8", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReconciler()
			r.RecordEdit("PI1", dec(tc.draft))

			merged, errs := r.ApplyDraftsTo([]inventory.Row{{ProductItemID: "PI1", QuantityAvailable: dec(tc.available)}})
			if !merged[0].ProposedQuantity.Equal(dec(tc.draft)) {
				t.Fatalf("expected proposed %s, got %s", tc.draft, merged[0].ProposedQuantity)
			}
			_, hasErr := errs["PI1"]
			if hasErr != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, errs)
			}
		})
	}
}

func TestApplyDraftsToCapacityError(t *testing.T) {
	r := NewReconciler()
	r.RecordEdit("PI1", dec("15"))
	_, errs := r.ApplyDraftsTo([]inventory.Row{{ProductItemID: "PI1", QuantityAvailable: dec("8")}})

	got := errs["PI1"]
	if len(got.Messages) != 1 || got.Messages[0] != "Reserved quantity exceeds available quantity." {
		t.Fatalf("unexpected messages %v", got.Messages)
	}
	if len(got.FieldNames) != 1 || got.FieldNames[0] != "proposedQuantity" {
		t.Fatalf("unexpected field names %v", got.FieldNames)
	}
	if got.Title == "" {
		t.Fatalf("expected a title")
	}
}

func TestApplyDraftsToLeavesRowsWithoutDrafts(t *testing.T) {
	r := NewReconciler()
	r.RecordEdit("PI1", dec("3"))
	input := []inventory.Row{
		{ProductItemID: "PI1", QuantityAvailable: dec("5")},
		{ProductItemID: "PI2", QuantityAvailable: dec("5")},
	}
	merged, errs := r.ApplyDraftsTo(input)

	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if !merged[1].ProposedQuantity.IsZero() {
		t.Fatalf("row without draft should keep server value")
	}
	if !input[0].ProposedQuantity.IsZero() {
		t.Fatalf("input slice must not be modified")
	}
}

func TestRecordEditLastWriteWins(t *testing.T) {
	r := NewReconciler()
	r.RecordEdit("PI1", dec("3"))
	r.RecordEdit("PI1", dec("6"))
	if r.Len() != 1 {
		t.Fatalf("expected one draft, got %d", r.Len())
	}
	if qty, _ := r.Get("PI1"); !qty.Equal(dec("6")) {
		t.Fatalf("expected 6, got %s", qty)
	}
}

func TestClearAndRestore(t *testing.T) {
	r := NewReconciler()
	r.RecordEdit("PI1", dec("3"))
	r.RecordEdit("PI2", dec("4"))
	snap := r.Snapshot()

	r.Clear("PI1")
	if _, ok := r.Get("PI1"); ok {
		t.Fatalf("PI1 should be cleared")
	}

	r.Restore(snap)
	if r.Len() != 2 {
		t.Fatalf("expected restore to bring back both drafts, got %d", r.Len())
	}
}
