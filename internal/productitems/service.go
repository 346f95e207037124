// Package productitems is the system of record for product item stock. It
// answers stock checks for the hold and consume workflows and applies
// submitted batches as transactions inside one database transaction.
package productitems

import (
	"context"
	"errors"
	"fmt"

	"github.com/OmkarVetal12/synlawn/internal/inventory"
	"github.com/OmkarVetal12/synlawn/internal/workflow"
	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
	"github.com/OmkarVetal12/synlawn/pkg/outbox"
	"github.com/OmkarVetal12/synlawn/pkg/outbox/payloads"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type Service struct {
	tx     txRunner
	repo   Repository
	outbox outboxPublisher
	logg   *logger.Logger
}

func NewService(tx txRunner, repo Repository, publisher outboxPublisher, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product item repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{tx: tx, repo: repo, outbox: publisher, logg: logg}, nil
}

// HoldChecker answers stock checks for hold workflows.
func (s *Service) HoldChecker() workflow.InventoryChecker {
	return workflow.InventoryCheckerFunc(s.CheckHoldInventory)
}

// ConsumeChecker answers stock checks for consume workflows.
func (s *Service) ConsumeChecker() workflow.InventoryChecker {
	return workflow.InventoryCheckerFunc(s.CheckConsumeInventory)
}

func parseIDs(raw []string, what string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+what+" id").
				WithDetails(map[string]string{"id": value})
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (s *Service) loadLineItems(ctx context.Context, demandLineIDs []string) ([]models.QuoteLineItem, error) {
	ids, err := parseIDs(demandLineIDs, "demand line")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one demand line is required")
	}
	lines, err := s.repo.LineItemsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load demand lines")
	}
	if len(lines) != len(ids) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "demand line not found")
	}
	return lines, nil
}

func productIDsOf(lines []models.QuoteLineItem) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	out := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		out = append(out, line.ProductID)
	}
	return out
}

func toRow(item models.ProductItem, available decimal.Decimal) inventory.Row {
	return inventory.Row{
		ProductItemID:     item.ID.String(),
		ProductID:         item.ProductID.String(),
		LocationID:        item.LocationID.String(),
		ProductName:       item.ProductName,
		LocationName:      item.LocationName,
		ProductFamily:     item.ProductFamily,
		QuantityAvailable: available,
	}
}

// CheckHoldInventory lists every product item stocking the products of the
// given demand lines, with on-hand minus on-hold as the available quantity.
func (s *Service) CheckHoldInventory(ctx context.Context, demandLineIDs []string) ([]inventory.Row, error) {
	lines, err := s.loadLineItems(ctx, demandLineIDs)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ItemsByProductIDs(ctx, productIDsOf(lines))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product items")
	}
	rows := make([]inventory.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, toRow(item, item.Available()))
	}
	return rows, nil
}

// CheckConsumeInventory lists the product items held for the demand lines'
// quote, with the held quantity as the available quantity.
func (s *Service) CheckConsumeInventory(ctx context.Context, demandLineIDs []string) ([]inventory.Row, error) {
	lines, err := s.loadLineItems(ctx, demandLineIDs)
	if err != nil {
		return nil, err
	}
	quoteID := lines[0].QuoteID
	for _, line := range lines[1:] {
		if line.QuoteID != quoteID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "demand lines must belong to one quote")
		}
	}
	held, err := s.repo.HeldForQuote(ctx, quoteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load held quantities")
	}
	items, err := s.repo.ItemsByProductIDs(ctx, productIDsOf(lines))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product items")
	}
	rows := make([]inventory.Row, 0, len(items))
	for _, item := range items {
		qty, ok := held[item.ID]
		if !ok {
			continue
		}
		rows = append(rows, toRow(item, decimal.Min(qty, item.QuantityOnHand)))
	}
	return rows, nil
}

// HeldByProduct sums the quantity held for a quote per product.
func (s *Service) HeldByProduct(ctx context.Context, quoteID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	held, err := s.repo.HeldForQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return map[uuid.UUID]decimal.Decimal{}, nil
	}
	ids := make([]uuid.UUID, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	items, err := s.repo.ItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := map[uuid.UUID]decimal.Decimal{}
	for _, item := range items {
		out[item.ProductID] = out[item.ProductID].Add(held[item.ID])
	}
	return out, nil
}

type batchLine struct {
	itemID     uuid.UUID
	productID  uuid.UUID
	locationID uuid.UUID
	quantity   decimal.Decimal
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// parseBatch checks the parallel slices line up and converts them.
func parseBatch(itemIDs []string, quantities []decimal.Decimal, productIDs, locationIDs []string) ([]batchLine, error) {
	n := len(itemIDs)
	if len(quantities) != n || len(locationIDs) != n || (productIDs != nil && len(productIDs) != n) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch sequences must have equal length")
	}
	lines := make([]batchLine, n)
	for i := 0; i < n; i++ {
		itemID, err := uuid.Parse(itemIDs[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product item id")
		}
		locationID, err := uuid.Parse(locationIDs[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id")
		}
		if !quantities[i].IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch quantities must be positive")
		}
		line := batchLine{itemID: itemID, locationID: locationID, quantity: quantities[i]}
		if productIDs != nil {
			productID, err := uuid.Parse(productIDs[i])
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
			}
			line.productID = productID
		}
		lines[i] = line
	}
	return lines, nil
}

func (s *Service) lockItems(ctx context.Context, repo Repository, lines []batchLine) (map[uuid.UUID]*models.ProductItem, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.itemID)
	}
	items, err := repo.LockItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.ProductItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for _, line := range lines {
		item, ok := byID[line.itemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product item not found").
				WithDetails(map[string]string{"product_item_id": line.itemID.String()})
		}
		if item.LocationID != line.locationID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location does not match product item").
				WithDetails(map[string]string{"product_item_id": line.itemID.String()})
		}
		if line.productID != uuid.Nil && item.ProductID != line.productID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product does not match product item").
				WithDetails(map[string]string{"product_item_id": line.itemID.String()})
		}
	}
	return byID, nil
}

func updateTouched(ctx context.Context, repo Repository, lines []batchLine, items map[uuid.UUID]*models.ProductItem) error {
	done := map[uuid.UUID]struct{}{}
	for _, line := range lines {
		if _, ok := done[line.itemID]; ok {
			continue
		}
		done[line.itemID] = struct{}{}
		if err := repo.UpdateStock(ctx, items[line.itemID]); err != nil {
			return err
		}
	}
	return nil
}

func movements(lines []batchLine, items map[uuid.UUID]*models.ProductItem) []payloads.InventoryMovement {
	out := make([]payloads.InventoryMovement, len(lines))
	for i, line := range lines {
		out[i] = payloads.InventoryMovement{
			ProductItemID: line.itemID,
			ProductID:     items[line.itemID].ProductID,
			LocationID:    line.locationID,
			Quantity:      line.quantity,
		}
	}
	return out
}

func insufficient(itemID uuid.UUID, requested, available decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "requested quantity exceeds available quantity").
		WithDetails(map[string]string{
			"product_item_id": itemID.String(),
			"requested":       requested.String(),
			"available":       available.String(),
		})
}

// SubmitHoldBatch places each line's quantity on hold for the quote. Every
// line must fit within the item's available quantity at commit time.
func (s *Service) SubmitHoldBatch(ctx context.Context, batch workflow.HoldBatch) error {
	if err := validate.Struct(batch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid hold batch").WithDetails(validationDetails(err))
	}
	quoteID, err := uuid.Parse(batch.QuoteID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote id")
	}
	lines, err := parseBatch(batch.ProductItemIDs, batch.Quantities, batch.ProductIDs, batch.LocationIDs)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, err := s.lockItems(ctx, repo, lines)
		if err != nil {
			return err
		}
		txRows := make([]models.ProductItemTransaction, 0, len(lines))
		for _, line := range lines {
			item := items[line.itemID]
			if available := item.Available(); line.quantity.GreaterThan(available) {
				return insufficient(line.itemID, line.quantity, available)
			}
			item.QuantityOnHold = item.QuantityOnHold.Add(line.quantity)
			qid := quoteID
			txRows = append(txRows, models.ProductItemTransaction{
				ProductItemID:   line.itemID,
				LocationID:      line.locationID,
				QuoteID:         &qid,
				TransactionType: enums.TransactionTypeAdjusted,
				Quantity:        line.quantity.Neg(),
				OnHold:          true,
			})
		}
		if err := updateTouched(ctx, repo, lines, items); err != nil {
			return err
		}
		if err := repo.CreateTransactions(ctx, txRows); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInventoryHeld,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quoteID,
			Data: payloads.InventoryHeldEvent{
				QuoteID: quoteID,
				Items:   movements(lines, items),
			},
		})
	})
}

// SubmitConsumeBatch consumes each line's quantity against the work order.
// With a quote id the quantity must come out of what is held for that quote;
// without one it comes out of available stock.
func (s *Service) SubmitConsumeBatch(ctx context.Context, batch workflow.ConsumeBatch) error {
	if err := validate.Struct(batch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid consume batch").WithDetails(validationDetails(err))
	}
	workOrderID, err := uuid.Parse(batch.WorkOrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid work order id")
	}
	var quoteID *uuid.UUID
	if batch.QuoteID != "" {
		parsed, err := uuid.Parse(batch.QuoteID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote id")
		}
		quoteID = &parsed
	}
	lines, err := parseBatch(batch.ProductItemIDs, batch.Quantities, nil, batch.LocationIDs)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, err := s.lockItems(ctx, repo, lines)
		if err != nil {
			return err
		}
		var held map[uuid.UUID]decimal.Decimal
		if quoteID != nil {
			if held, err = repo.HeldForQuote(ctx, *quoteID); err != nil {
				return err
			}
		}

		txRows := make([]models.ProductItemTransaction, 0, len(lines))
		consumed := make([]models.ProductConsumed, 0, len(lines))
		for _, line := range lines {
			item := items[line.itemID]
			if quoteID != nil {
				ceiling := decimal.Min(held[line.itemID], item.QuantityOnHand)
				if line.quantity.GreaterThan(ceiling) {
					return insufficient(line.itemID, line.quantity, ceiling)
				}
				held[line.itemID] = held[line.itemID].Sub(line.quantity)
				item.QuantityOnHold = decimal.Max(item.QuantityOnHold.Sub(line.quantity), decimal.Zero)
			} else if available := item.Available(); line.quantity.GreaterThan(available) {
				return insufficient(line.itemID, line.quantity, available)
			}
			item.QuantityOnHand = item.QuantityOnHand.Sub(line.quantity)

			wo := workOrderID
			txRows = append(txRows, models.ProductItemTransaction{
				ProductItemID:   line.itemID,
				LocationID:      line.locationID,
				QuoteID:         quoteID,
				WorkOrderID:     &wo,
				TransactionType: enums.TransactionTypeConsumed,
				Quantity:        line.quantity,
			})
			consumed = append(consumed, models.ProductConsumed{
				WorkOrderID:      workOrderID,
				ProductItemID:    line.itemID,
				QuantityConsumed: line.quantity,
				Status:           enums.ConsumptionStatusUtilized,
			})
		}
		if err := updateTouched(ctx, repo, lines, items); err != nil {
			return err
		}
		if err := repo.CreateTransactions(ctx, txRows); err != nil {
			return err
		}
		if err := repo.CreateConsumed(ctx, consumed); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInventoryConsumed,
			AggregateType: enums.AggregateWorkOrder,
			AggregateID:   workOrderID,
			Data: payloads.InventoryConsumedEvent{
				WorkOrderID: workOrderID,
				QuoteID:     quoteID,
				Items:       movements(lines, items),
			},
		})
	})
}
