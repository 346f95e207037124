package inventory

import "github.com/shopspring/decimal"

// Row is one product item at one location as returned by a stock check, plus
// the quantity the user proposes to move.
type Row struct {
	ProductItemID     string          `json:"product_item_id"`
	ProductID         string          `json:"product_id"`
	LocationID        string          `json:"location_id"`
	ProductName       string          `json:"product_name"`
	LocationName      string          `json:"location_name"`
	ProductFamily     string          `json:"product_family,omitempty"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	ProposedQuantity  decimal.Decimal `json:"proposed_quantity"`
}

// HasProposal reports whether the row should be part of a submitted batch.
func (r Row) HasProposal() bool {
	return r.ProposedQuantity.IsPositive()
}
