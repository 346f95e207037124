package productitems

import (
	"context"

	"github.com/OmkarVetal12/synlawn/internal/repo"
	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository reads and writes product item stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LineItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.QuoteLineItem, error)
	ItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductItem, error)
	LockItems(ctx context.Context, ids []uuid.UUID) ([]models.ProductItem, error)
	ItemsByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductItem, error)
	HeldForQuote(ctx context.Context, quoteID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	UpdateStock(ctx context.Context, item *models.ProductItem) error
	CreateTransactions(ctx context.Context, rows []models.ProductItemTransaction) error
	CreateConsumed(ctx context.Context, rows []models.ProductConsumed) error
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

func (r *repository) LineItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.QuoteLineItem, error) {
	var rows []models.QuoteLineItem
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.DB(ctx).
		Where("id IN ?", ids).
		Order("sort_order ASC").
		Order("product_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductItem, error) {
	var rows []models.ProductItem
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

// LockItems reads product items with row locks; call it inside a transaction.
func (r *repository) LockItems(ctx context.Context, ids []uuid.UUID) ([]models.ProductItem, error) {
	var rows []models.ProductItem
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.ForUpdate(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ItemsByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductItem, error) {
	var rows []models.ProductItem
	if len(productIDs) == 0 {
		return rows, nil
	}
	err := r.DB(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_name ASC").
		Order("location_name ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// HeldForQuote returns the quantity still on hold for the quote per product
// item: holds placed minus quantities consumed against the quote.
func (r *repository) HeldForQuote(ctx context.Context, quoteID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []models.ProductItemTransaction
	if err := r.DB(ctx).Where("quote_id = ?", quoteID).Find(&rows).Error; err != nil {
		return nil, err
	}
	held := map[uuid.UUID]decimal.Decimal{}
	for _, row := range rows {
		switch {
		case row.TransactionType == enums.TransactionTypeAdjusted && row.OnHold:
			held[row.ProductItemID] = held[row.ProductItemID].Add(row.Quantity.Neg())
		case row.TransactionType == enums.TransactionTypeConsumed:
			held[row.ProductItemID] = held[row.ProductItemID].Sub(row.Quantity)
		}
	}
	for id, qty := range held {
		if !qty.IsPositive() {
			delete(held, id)
		}
	}
	return held, nil
}

// UpdateStock writes on-hand and on-hold quantities guarded by the row
// version. A concurrent writer yields a conflict error.
func (r *repository) UpdateStock(ctx context.Context, item *models.ProductItem) error {
	res := r.DB(ctx).Model(&models.ProductItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"quantity_on_hand": item.QuantityOnHand,
			"quantity_on_hold": item.QuantityOnHold,
			"version":          item.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product item changed, reload inventory and try again")
	}
	item.Version++
	return nil
}

func (r *repository) CreateTransactions(ctx context.Context, rows []models.ProductItemTransaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&rows).Error
}

func (r *repository) CreateConsumed(ctx context.Context, rows []models.ProductConsumed) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&rows).Error
}
