package workflow

import (
	"encoding/json"

	"github.com/OmkarVetal12/synlawn/internal/inventory"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	"github.com/shopspring/decimal"
)

// HoldBatch is the payload submitted to reserve stock against a quote.
type HoldBatch struct {
	QuoteID        string            `json:"quote_id" validate:"required"`
	ProductItemIDs []string          `json:"product_item_ids" validate:"required,min=1,dive,required"`
	Quantities     []decimal.Decimal `json:"quantities" validate:"required,min=1"`
	ProductIDs     []string          `json:"product_ids" validate:"required,min=1"`
	LocationIDs    []string          `json:"location_ids" validate:"required,min=1"`
}

// ConsumeBatch is the payload submitted to consume held stock against a
// work order.
type ConsumeBatch struct {
	WorkOrderID    string            `json:"work_order_id" validate:"required"`
	QuoteID        string            `json:"quote_id"`
	ProductItemIDs []string          `json:"product_item_ids" validate:"required,min=1,dive,required"`
	Quantities     []decimal.Decimal `json:"quantities" validate:"required,min=1"`
	LocationIDs    []string          `json:"location_ids" validate:"required,min=1"`
}

type batchEntry struct {
	productItemID string
	productID     string
	locationID    string
	quantity      decimal.Decimal
}

// Batch is the immutable result of a confirm. Accessors return copies.
type Batch struct {
	mode        enums.WorkflowMode
	quoteID     string
	workOrderID string
	entries     []batchEntry
}

// buildBatch keeps every row with a positive proposed quantity, in row order.
func buildBatch(mode enums.WorkflowMode, quoteID, workOrderID string, rows []inventory.Row) *Batch {
	b := &Batch{mode: mode, quoteID: quoteID, workOrderID: workOrderID}
	for _, row := range rows {
		if !row.HasProposal() {
			continue
		}
		b.entries = append(b.entries, batchEntry{
			productItemID: row.ProductItemID,
			productID:     row.ProductID,
			locationID:    row.LocationID,
			quantity:      row.ProposedQuantity,
		})
	}
	return b
}

func (b *Batch) Mode() enums.WorkflowMode { return b.mode }

func (b *Batch) QuoteID() string { return b.quoteID }

func (b *Batch) WorkOrderID() string { return b.workOrderID }

func (b *Batch) Len() int { return len(b.entries) }

func (b *Batch) IsEmpty() bool { return len(b.entries) == 0 }

func (b *Batch) ProductItemIDs() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.productItemID
	}
	return out
}

func (b *Batch) ProductIDs() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.productID
	}
	return out
}

func (b *Batch) LocationIDs() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.locationID
	}
	return out
}

func (b *Batch) Quantities() []decimal.Decimal {
	out := make([]decimal.Decimal, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.quantity
	}
	return out
}

func (b *Batch) Hold() HoldBatch {
	return HoldBatch{
		QuoteID:        b.quoteID,
		ProductItemIDs: b.ProductItemIDs(),
		Quantities:     b.Quantities(),
		ProductIDs:     b.ProductIDs(),
		LocationIDs:    b.LocationIDs(),
	}
}

func (b *Batch) Consume() ConsumeBatch {
	return ConsumeBatch{
		WorkOrderID:    b.workOrderID,
		QuoteID:        b.quoteID,
		ProductItemIDs: b.ProductItemIDs(),
		Quantities:     b.Quantities(),
		LocationIDs:    b.LocationIDs(),
	}
}

// MarshalJSON renders the batch as the payload of its mode.
func (b *Batch) MarshalJSON() ([]byte, error) {
	if b.mode == enums.WorkflowModeConsume {
		return json.Marshal(b.Consume())
	}
	return json.Marshal(b.Hold())
}
