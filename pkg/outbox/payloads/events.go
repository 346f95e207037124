package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryMovement is one product item line of a hold or consume batch.
type InventoryMovement struct {
	ProductItemID uuid.UUID       `json:"product_item_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// InventoryHeldEvent is emitted when stock is placed on hold for a quote.
type InventoryHeldEvent struct {
	QuoteID uuid.UUID           `json:"quote_id"`
	Items   []InventoryMovement `json:"items"`
}

// InventoryConsumedEvent is emitted when stock is consumed by a work order.
type InventoryConsumedEvent struct {
	WorkOrderID uuid.UUID           `json:"work_order_id"`
	QuoteID     *uuid.UUID          `json:"quote_id,omitempty"`
	Items       []InventoryMovement `json:"items"`
}

// QuoteOptionsChangedEvent is emitted when the customer's option picks change.
type QuoteOptionsChangedEvent struct {
	QuoteID           uuid.UUID       `json:"quote_id"`
	SelectedLineIDs   []uuid.UUID     `json:"selected_line_ids"`
	DeselectedLineIDs []uuid.UUID     `json:"deselected_line_ids"`
	Total             decimal.Decimal `json:"total"`
}
