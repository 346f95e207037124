package workflow

import (
	"context"

	"github.com/OmkarVetal12/synlawn/internal/inventory"
	"github.com/shopspring/decimal"
)

// DemandLine is one quote line item the user may act on.
type DemandLine struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	ProductFamily     string          `json:"product_family,omitempty"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantityOnHold    decimal.Decimal `json:"quantity_on_hold"`
	QuoteID           string          `json:"quote_id,omitempty"`
	WorkOrderID       string          `json:"work_order_id,omitempty"`
}

// DemandSource lists the demand lines of a parent record (quote or work order).
type DemandSource interface {
	FetchDemandLines(ctx context.Context, parentID string) ([]DemandLine, error)
}

// DemandSourceFunc adapts a function to DemandSource.
type DemandSourceFunc func(ctx context.Context, parentID string) ([]DemandLine, error)

func (f DemandSourceFunc) FetchDemandLines(ctx context.Context, parentID string) ([]DemandLine, error) {
	return f(ctx, parentID)
}

// InventoryChecker returns the stock rows for the selected demand lines. The
// proposed quantity of returned rows is ignored.
type InventoryChecker interface {
	CheckInventory(ctx context.Context, demandLineIDs []string) ([]inventory.Row, error)
}

// InventoryCheckerFunc adapts a function to InventoryChecker.
type InventoryCheckerFunc func(ctx context.Context, demandLineIDs []string) ([]inventory.Row, error)

func (f InventoryCheckerFunc) CheckInventory(ctx context.Context, demandLineIDs []string) ([]inventory.Row, error) {
	return f(ctx, demandLineIDs)
}

// HoldSubmitter persists a hold batch.
type HoldSubmitter interface {
	SubmitHoldBatch(ctx context.Context, batch HoldBatch) error
}

// ConsumeSubmitter persists a consume batch.
type ConsumeSubmitter interface {
	SubmitConsumeBatch(ctx context.Context, batch ConsumeBatch) error
}

// Collaborators bundles the system-of-record calls one workflow mode needs.
// Hold is required for hold workflows and Consume for consume workflows.
type Collaborators struct {
	Demand    DemandSource
	Inventory InventoryChecker
	Hold      HoldSubmitter
	Consume   ConsumeSubmitter
}
