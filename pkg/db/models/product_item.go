package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OmkarVetal12/synlawn/pkg/enums"
)

// ProductItem tracks on-hand and on-hold stock for a product at one location.
type ProductItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	ProductName    string          `gorm:"column:product_name;not null"`
	ProductFamily  string          `gorm:"column:product_family;not null;default:''"`
	LocationID     uuid.UUID       `gorm:"column:location_id;type:uuid;not null"`
	LocationName   string          `gorm:"column:location_name;not null"`
	QuantityOnHand decimal.Decimal `gorm:"column:quantity_on_hand;type:numeric(14,4);not null;default:0"`
	QuantityOnHold decimal.Decimal `gorm:"column:quantity_on_hold;type:numeric(14,4);not null;default:0"`
	Version        int             `gorm:"column:version;not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *ProductItem) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Available is the quantity that can still be placed on hold.
func (p ProductItem) Available() decimal.Decimal {
	available := p.QuantityOnHand.Sub(p.QuantityOnHold)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// ProductItemTransaction is an append-only movement of product item stock.
// Holds are recorded as negative Adjusted rows flagged OnHold; consumption as
// positive Consumed rows tied to a work order.
type ProductItemTransaction struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ProductItemID   uuid.UUID             `gorm:"column:product_item_id;type:uuid;not null;index"`
	LocationID      uuid.UUID             `gorm:"column:location_id;type:uuid;not null"`
	QuoteID         *uuid.UUID            `gorm:"column:quote_id;type:uuid;index"`
	WorkOrderID     *uuid.UUID            `gorm:"column:work_order_id;type:uuid"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;not null"`
	Quantity        decimal.Decimal       `gorm:"column:quantity;type:numeric(14,4);not null"`
	OnHold          bool                  `gorm:"column:on_hold;not null;default:false"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (p *ProductItemTransaction) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProductConsumed records a quantity of a product item used on a work order.
type ProductConsumed struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	WorkOrderID      uuid.UUID               `gorm:"column:work_order_id;type:uuid;not null;index"`
	ProductItemID    uuid.UUID               `gorm:"column:product_item_id;type:uuid;not null"`
	QuantityConsumed decimal.Decimal         `gorm:"column:quantity_consumed;type:numeric(14,4);not null"`
	Status           enums.ConsumptionStatus `gorm:"column:status;not null"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (ProductConsumed) TableName() string {
	return "products_consumed"
}

func (p *ProductConsumed) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
