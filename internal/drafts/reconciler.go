// Package drafts keeps the user's last entered quantity per product item so
// edits survive a full row reload, and re-validates them against fresh stock.
package drafts

import (
	"github.com/OmkarVetal12/synlawn/internal/inventory"
	"github.com/OmkarVetal12/synlawn/internal/ledger"
	"github.com/OmkarVetal12/synlawn/internal/quantity"
	"github.com/shopspring/decimal"
)

const (
	CapacityMessage = "Reserved quantity exceeds available quantity."
	CapacityField   = "proposedQuantity"
	CapacityTitle   = "Please reduce the quantity to reserve"
)

// CapacityError is the ledger entry raised when a draft no longer fits.
func CapacityError() ledger.RowError {
	return ledger.RowError{
		Messages:   []string{CapacityMessage},
		FieldNames: []string{CapacityField},
		Title:      CapacityTitle,
	}
}

// Reconciler holds one draft per product item. Last write wins.
type Reconciler struct {
	drafts map[string]decimal.Decimal
}

func NewReconciler() *Reconciler {
	return &Reconciler{drafts: map[string]decimal.Decimal{}}
}

func (r *Reconciler) RecordEdit(productItemID string, qty decimal.Decimal) {
	if productItemID == "" {
		return
	}
	r.drafts[productItemID] = qty
}

func (r *Reconciler) Get(productItemID string) (decimal.Decimal, bool) {
	qty, ok := r.drafts[productItemID]
	return qty, ok
}

// ApplyDraftsTo overwrites the proposed quantity of every row that has a
// draft and reports rows whose draft now exceeds the available quantity.
// The input slice is not modified.
func (r *Reconciler) ApplyDraftsTo(rows []inventory.Row) ([]inventory.Row, map[string]ledger.RowError) {
	merged := make([]inventory.Row, len(rows))
	errs := map[string]ledger.RowError{}
	for i, row := range rows {
		qty, ok := r.drafts[row.ProductItemID]
		if ok {
			row.ProposedQuantity = qty
			if quantity.ViolatesCeiling(qty, row.QuantityAvailable) {
				errs[row.ProductItemID] = CapacityError()
			}
		}
		merged[i] = row
	}
	return merged, errs
}

// Clear deletes drafts for the given ids.
func (r *Reconciler) Clear(productItemIDs ...string) {
	for _, id := range productItemIDs {
		delete(r.drafts, id)
	}
}

func (r *Reconciler) Len() int { return len(r.drafts) }

func (r *Reconciler) Snapshot() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.drafts))
	for id, qty := range r.drafts {
		out[id] = qty
	}
	return out
}

// Restore replaces all drafts with the supplied set.
func (r *Reconciler) Restore(drafts map[string]decimal.Decimal) {
	r.drafts = make(map[string]decimal.Decimal, len(drafts))
	for id, qty := range drafts {
		if id == "" {
			continue
		}
		r.drafts[id] = qty
	}
}
