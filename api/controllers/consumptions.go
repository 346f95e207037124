package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OmkarVetal12/synlawn/api/responses"
	"github.com/OmkarVetal12/synlawn/api/validators"
	"github.com/OmkarVetal12/synlawn/internal/productitems"
	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
)

// ConsumptionRecorder writes product consumption records for a work order.
type ConsumptionRecorder interface {
	RecordConsumption(ctx context.Context, workOrderID uuid.UUID, entries []productitems.ConsumptionEntry) ([]models.ProductConsumed, error)
}

type recordConsumptionRequest struct {
	Entries []productitems.ConsumptionEntry `json:"entries" validate:"required,dive"`
}

type consumedResponse struct {
	ID               uuid.UUID       `json:"id"`
	WorkOrderID      uuid.UUID       `json:"work_order_id"`
	ProductItemID    uuid.UUID       `json:"product_item_id"`
	QuantityConsumed decimal.Decimal `json:"quantity_consumed"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

func newConsumedResponse(rows []models.ProductConsumed) []consumedResponse {
	out := make([]consumedResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, consumedResponse{
			ID:               row.ID,
			WorkOrderID:      row.WorkOrderID,
			ProductItemID:    row.ProductItemID,
			QuantityConsumed: row.QuantityConsumed,
			Status:           string(row.Status),
			CreatedAt:        row.CreatedAt,
		})
	}
	return out
}

// WorkOrderRecordConsumption records consumed quantities against a work order.
func WorkOrderRecordConsumption(svc ConsumptionRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consumption service unavailable"))
			return
		}
		workOrderID, err := uuidParam(r, "workOrderID", "invalid work order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload recordConsumptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.RecordConsumption(r.Context(), workOrderID, payload.Entries)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newConsumedResponse(rows))
	}
}
