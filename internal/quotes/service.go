// Package quotes serves the demand side of the inventory workflows: the quote
// line items that stock is held or consumed for, and the customer's option
// picks on a quote.
package quotes

import (
	"context"
	"fmt"

	"github.com/OmkarVetal12/synlawn/internal/workflow"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
	"github.com/OmkarVetal12/synlawn/pkg/outbox"
	"github.com/OmkarVetal12/synlawn/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const NoChangesMessage = "No changes detected."

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// heldReader reports quantities already on hold for a quote per product.
type heldReader interface {
	HeldByProduct(ctx context.Context, quoteID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// Choice picks one line of an option group.
type Choice struct {
	Family     string    `json:"family" validate:"required"`
	GroupKey   string    `json:"group_key" validate:"required"`
	LineItemID uuid.UUID `json:"line_item_id" validate:"required"`
}

type Service struct {
	tx     txRunner
	repo   Repository
	held   heldReader
	outbox outboxPublisher
	logg   *logger.Logger
}

func NewService(tx txRunner, repo Repository, held heldReader, publisher outboxPublisher, logg *logger.Logger) (*Service, error) {
	switch {
	case tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case repo == nil:
		return nil, fmt.Errorf("quote repository required")
	case held == nil:
		return nil, fmt.Errorf("held quantity reader required")
	case publisher == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case logg == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &Service{tx: tx, repo: repo, held: held, outbox: publisher, logg: logg}, nil
}

// HoldSource lists demand lines for hold workflows, keyed by quote id.
func (s *Service) HoldSource() workflow.DemandSource {
	return workflow.DemandSourceFunc(s.DemandLinesForQuote)
}

// ConsumeSource lists demand lines for consume workflows, keyed by work order id.
func (s *Service) ConsumeSource() workflow.DemandSource {
	return workflow.DemandSourceFunc(s.DemandLinesForWorkOrder)
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+what+" id")
	}
	return id, nil
}

// DemandLinesForQuote lists the quote lines the customer is buying: included
// lines and picked options.
func (s *Service) DemandLinesForQuote(ctx context.Context, quoteID string) ([]workflow.DemandLine, error) {
	id, err := parseID(quoteID, "quote")
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindQuote(ctx, id); err != nil {
		return nil, err
	}
	return s.demandLines(ctx, id, "")
}

// DemandLinesForWorkOrder lists the demand lines of the quote a work order
// fulfils, each tagged with the work order id.
func (s *Service) DemandLinesForWorkOrder(ctx context.Context, workOrderID string) ([]workflow.DemandLine, error) {
	id, err := parseID(workOrderID, "work order")
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.QuoteID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work order has no quote")
	}
	return s.demandLines(ctx, *order.QuoteID, order.ID.String())
}

func (s *Service) demandLines(ctx context.Context, quoteID uuid.UUID, workOrderID string) ([]workflow.DemandLine, error) {
	lines, err := s.repo.LineItems(ctx, quoteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote line items")
	}
	held, err := s.held.HeldByProduct(ctx, quoteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load held quantities")
	}
	out := make([]workflow.DemandLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductOption != enums.ProductOptionIncluded && !line.CustomerSelection {
			continue
		}
		family := ""
		if line.Family != nil {
			family = *line.Family
		}
		out = append(out, workflow.DemandLine{
			ID:                line.ID.String(),
			ProductID:         line.ProductID.String(),
			ProductName:       line.ProductName,
			ProductFamily:     family,
			QuantityRequested: line.Quantity,
			QuantityOnHold:    held[line.ProductID],
			QuoteID:           quoteID.String(),
			WorkOrderID:       workOrderID,
		})
	}
	return out, nil
}

// Options returns the grouped option view of a quote.
func (s *Service) Options(ctx context.Context, quoteID uuid.UUID) ([]OptionFamily, error) {
	if _, err := s.repo.FindQuote(ctx, quoteID); err != nil {
		return nil, err
	}
	lines, err := s.repo.LineItems(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return NewOptionSet(lines).Families(), nil
}

// SaveOptions applies the choices and stores every line's selection and
// price in one transaction with a quote_options_changed event.
func (s *Service) SaveOptions(ctx context.Context, quoteID uuid.UUID, choices []Choice) ([]OptionFamily, error) {
	if _, err := s.repo.FindQuote(ctx, quoteID); err != nil {
		return nil, err
	}
	lines, err := s.repo.LineItems(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	set := NewOptionSet(lines)
	for _, choice := range choices {
		if err := set.Choose(choice.Family, choice.GroupKey, choice.LineItemID); err != nil {
			return nil, err
		}
	}
	selections := set.Selections()
	if len(selections) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, NoChangesMessage)
	}

	event := payloads.QuoteOptionsChangedEvent{
		QuoteID:           quoteID,
		SelectedLineIDs:   []uuid.UUID{},
		DeselectedLineIDs: []uuid.UUID{},
		Total:             Total(selections, lines),
	}
	for _, sel := range selections {
		if sel.CustomerSelection {
			event.SelectedLineIDs = append(event.SelectedLineIDs, sel.ID)
		} else {
			event.DeselectedLineIDs = append(event.DeselectedLineIDs, sel.ID)
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateSelections(ctx, quoteID, selections); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteOptionsChanged,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quoteID,
			Data:          event,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"quote_id": quoteID.String(),
		"selected": len(event.SelectedLineIDs),
		"total":    event.Total.String(),
	}), "quote options saved")

	updated, err := s.repo.LineItems(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return NewOptionSet(updated).Families(), nil
}
