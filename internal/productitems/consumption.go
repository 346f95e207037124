package productitems

import (
	"context"
	"strings"

	"github.com/OmkarVetal12/synlawn/internal/quantity"
	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MissingConsumptionMessage = "Please enter Quantity and Status for at least one record."

// ConsumptionEntry is one edited row of the consumption grid.
type ConsumptionEntry struct {
	ProductItemID string `json:"product_item_id" validate:"required,uuid"`
	Quantity      string `json:"quantity"`
	Status        string `json:"status"`
}

// BuildConsumedRecords keeps the entries that carry both a positive quantity
// and a status. At least one entry must survive.
func BuildConsumedRecords(workOrderID uuid.UUID, entries []ConsumptionEntry) ([]models.ProductConsumed, error) {
	records := make([]models.ProductConsumed, 0, len(entries))
	for _, entry := range entries {
		qty, ok := quantity.Parse(entry.Quantity)
		status := strings.TrimSpace(entry.Status)
		if !ok || !qty.IsPositive() || status == "" {
			continue
		}
		parsedStatus, err := enums.ParseConsumptionStatus(status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid consumption status").
				WithDetails(map[string]string{"product_item_id": entry.ProductItemID})
		}
		itemID, err := uuid.Parse(entry.ProductItemID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product item id")
		}
		records = append(records, models.ProductConsumed{
			WorkOrderID:      workOrderID,
			ProductItemID:    itemID,
			QuantityConsumed: qty,
			Status:           parsedStatus,
		})
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, MissingConsumptionMessage)
	}
	return records, nil
}

// RecordConsumption stores consumed product records for a work order.
func (s *Service) RecordConsumption(ctx context.Context, workOrderID uuid.UUID, entries []ConsumptionEntry) ([]models.ProductConsumed, error) {
	records, err := BuildConsumedRecords(workOrderID, entries)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ProductItemID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, err := repo.ItemsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]struct{}, len(items))
		for _, item := range items {
			known[item.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product item not found").
					WithDetails(map[string]string{"product_item_id": id.String()})
			}
		}
		return repo.CreateConsumed(ctx, records)
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"work_order_id": workOrderID.String(),
		"records":       len(records),
	}), "consumption recorded")
	return records, nil
}
