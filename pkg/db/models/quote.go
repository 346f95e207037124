package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OmkarVetal12/synlawn/pkg/enums"
)

// Quote is the customer-facing proposal that holds are reserved against.
type Quote struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	QuoteNumber  string          `gorm:"column:quote_number;not null;uniqueIndex"`
	Name         string          `gorm:"column:name;not null"`
	Terms        *string         `gorm:"column:terms"`
	DepositValue decimal.Decimal `gorm:"column:deposit_value;type:numeric(14,2);not null;default:0"`
	LineItems    []QuoteLineItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

// QuoteLineItem is one demand line of a quote.
type QuoteLineItem struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID           uuid.UUID           `gorm:"column:quote_id;type:uuid;not null;index"`
	ProductID         uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ProductName       string              `gorm:"column:product_name;not null"`
	Family            *string             `gorm:"column:family"`
	SubFamily         *string             `gorm:"column:sub_family"`
	ProductOption     enums.ProductOption `gorm:"column:product_option;not null;default:'Included'"`
	CustomerSelection bool                `gorm:"column:customer_selection;not null;default:false"`
	Quantity          decimal.Decimal     `gorm:"column:quantity;type:numeric(14,4);not null"`
	UnitPrice         decimal.Decimal     `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	ListPrice         decimal.Decimal     `gorm:"column:list_price;type:numeric(14,2);not null;default:0"`
	SortOrder         int                 `gorm:"column:sort_order;not null;default:0"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (q *QuoteLineItem) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

// WorkOrder is the job that consumes inventory held for its quote.
type WorkOrder struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Number    string     `gorm:"column:number;not null;uniqueIndex"`
	QuoteID   *uuid.UUID `gorm:"column:quote_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (w *WorkOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}
