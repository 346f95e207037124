package quotes

import (
	"context"

	"github.com/OmkarVetal12/synlawn/internal/repo"
	"github.com/OmkarVetal12/synlawn/pkg/db"
	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads quotes, their line items and work orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	FindWorkOrder(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error)
	LineItems(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteLineItem, error)
	UpdateSelections(ctx context.Context, quoteID uuid.UUID, selections []Selection) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.DB(ctx).First(&quote, "id = ?", id).Error
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) FindWorkOrder(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := r.DB(ctx).First(&order, "id = ?", id).Error
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "work order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) LineItems(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteLineItem, error) {
	var rows []models.QuoteLineItem
	err := r.DB(ctx).
		Where("quote_id = ?", quoteID).
		Order("sort_order ASC").
		Order("product_name ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateSelections(ctx context.Context, quoteID uuid.UUID, selections []Selection) error {
	for _, sel := range selections {
		res := r.DB(ctx).Model(&models.QuoteLineItem{}).
			Where("id = ? AND quote_id = ?", sel.ID, quoteID).
			Updates(map[string]any{
				"customer_selection": sel.CustomerSelection,
				"unit_price":         sel.UnitPrice,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "quote line item not found").
				WithDetails(map[string]string{"line_item_id": sel.ID.String()})
		}
	}
	return nil
}
