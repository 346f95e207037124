package quotes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
)

func strPtr(v string) *string { return &v }

func line(name string, family, sub *string, option enums.ProductOption, selected bool, qty, unit, list string) models.QuoteLineItem {
	return models.QuoteLineItem{
		ID:                uuid.New(),
		ProductName:       name,
		Family:            family,
		SubFamily:         sub,
		ProductOption:     option,
		CustomerSelection: selected,
		Quantity:          decimal.RequireFromString(qty),
		UnitPrice:         decimal.RequireFromString(unit),
		ListPrice:         decimal.RequireFromString(list),
	}
}

func findGroup(t *testing.T, families []OptionFamily, family, key string) OptionGroup {
	t.Helper()
	for _, f := range families {
		if f.Family != family {
			continue
		}
		for _, g := range f.Groups {
			if g.Key == key {
				return g
			}
		}
	}
	t.Fatalf("group %s/%s not found", family, key)
	return OptionGroup{}
}

func TestOptionSetGroupsAndDefaults(t *testing.T) {
	turf := strPtr("Turf")
	premium := strPtr("Premium")
	base := line("Base Prep", nil, nil, enums.ProductOptionIncluded, false, "1", "100", "100")
	basic := line("Basic Turf", turf, premium, enums.ProductOptionOptional, false, "10", "5", "5")
	deluxe := line("Deluxe Turf", turf, premium, enums.ProductOptionRecommended, false, "10", "8", "8")
	edging := line("Edging", turf, nil, enums.ProductOptionOptional, true, "2", "3", "3")

	families := NewOptionSet([]models.QuoteLineItem{deluxe, base, basic, edging}).Families()
	if len(families) != 2 || families[0].Family != "Other" || families[1].Family != "Turf" {
		t.Fatalf("expected families sorted [Other Turf], got %+v", families)
	}

	premiumGroup := findGroup(t, families, "Turf", "Premium")
	if premiumGroup.SelectedID == nil || *premiumGroup.SelectedID != deluxe.ID {
		t.Fatalf("expected recommended line preselected, got %+v", premiumGroup.SelectedID)
	}
	edgingGroup := findGroup(t, families, "Turf", noSubFamily)
	if edgingGroup.SelectedID == nil || *edgingGroup.SelectedID != edging.ID {
		t.Fatalf("expected customer pick preselected")
	}
	otherGroup := findGroup(t, families, "Other", noSubFamily)
	if otherGroup.SelectedID != nil {
		t.Fatalf("included-only group has no radio choice")
	}
	if !premiumGroup.Items[0].NetTotal.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("unexpected net total %s", premiumGroup.Items[0].NetTotal)
	}
}

func TestOptionSetChooseAndSelections(t *testing.T) {
	turf := strPtr("Turf")
	premium := strPtr("Premium")
	base := line("Base Prep", nil, nil, enums.ProductOptionIncluded, false, "1", "0", "120")
	basic := line("Basic Turf", turf, premium, enums.ProductOptionOptional, false, "10", "5", "5")
	deluxe := line("Deluxe Turf", turf, premium, enums.ProductOptionRecommended, false, "10", "8", "8")
	lines := []models.QuoteLineItem{base, basic, deluxe}
	set := NewOptionSet(lines)

	if err := set.Choose("Turf", "Premium", basic.ID); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if err := set.Choose("Turf", "Premium", uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for foreign line, got %v", err)
	}
	if err := set.Choose("Turf", "Budget", basic.ID); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown group, got %v", err)
	}
	if err := set.Choose("Other", noSubFamily, base.ID); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("included lines are not selectable, got %v", err)
	}

	got := map[uuid.UUID]Selection{}
	for _, sel := range set.Selections() {
		got[sel.ID] = sel
	}
	if !got[base.ID].CustomerSelection || !got[base.ID].UnitPrice.Equal(decimal.RequireFromString("120")) {
		t.Fatalf("included line should be selected at list price, got %+v", got[base.ID])
	}
	if !got[basic.ID].CustomerSelection || !got[basic.ID].UnitPrice.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("chosen line should be selected, got %+v", got[basic.ID])
	}
	if got[deluxe.ID].CustomerSelection || !got[deluxe.ID].UnitPrice.IsZero() {
		t.Fatalf("unchosen line should be zeroed, got %+v", got[deluxe.ID])
	}

	total := Total(set.Selections(), lines)
	if !total.Equal(decimal.RequireFromString("170")) {
		t.Fatalf("expected total 170, got %s", total)
	}
}
