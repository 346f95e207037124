package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/OmkarVetal12/synlawn/internal/productitems"
	"github.com/OmkarVetal12/synlawn/pkg/db/models"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
)

type stubRecorder struct {
	workOrderID uuid.UUID
	entries     []productitems.ConsumptionEntry
}

func (s *stubRecorder) RecordConsumption(_ context.Context, workOrderID uuid.UUID, entries []productitems.ConsumptionEntry) ([]models.ProductConsumed, error) {
	s.workOrderID = workOrderID
	s.entries = entries
	return productitems.BuildConsumedRecords(workOrderID, entries)
}

func consumptionRouter(svc ConsumptionRecorder) http.Handler {
	r := chi.NewRouter()
	r.Post("/work-orders/{workOrderID}/consumptions", WorkOrderRecordConsumption(svc, testLogger()))
	return r
}

func TestRecordConsumptionCreatesRecords(t *testing.T) {
	svc := &stubRecorder{}
	h := consumptionRouter(svc)
	workOrderID := uuid.New()
	itemID := uuid.New()

	resp := do(t, h, http.MethodPost, "/work-orders/"+workOrderID.String()+"/consumptions",
		`{"entries":[{"product_item_id":"`+itemID.String()+`","quantity":"2.5","status":"Utilized"},{"product_item_id":"`+uuid.NewString()+`","quantity":"","status":""}]}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var rows []consumedResponse
	decodeData(t, resp, &rows)
	if len(rows) != 1 {
		t.Fatalf("expected one record, got %d", len(rows))
	}
	if rows[0].ProductItemID != itemID || rows[0].Status != string(enums.ConsumptionStatusUtilized) {
		t.Fatalf("unexpected record %+v", rows[0])
	}
	if svc.workOrderID != workOrderID {
		t.Fatalf("work order id not forwarded")
	}
}

func TestRecordConsumptionRequiresOneEntry(t *testing.T) {
	h := consumptionRouter(&stubRecorder{})

	resp := do(t, h, http.MethodPost, "/work-orders/"+uuid.NewString()+"/consumptions",
		`{"entries":[{"product_item_id":"`+uuid.NewString()+`","quantity":"0","status":"Utilized"}]}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRecordConsumptionRejectsBadItemID(t *testing.T) {
	h := consumptionRouter(&stubRecorder{})

	resp := do(t, h, http.MethodPost, "/work-orders/"+uuid.NewString()+"/consumptions",
		`{"entries":[{"product_item_id":"abc","quantity":"1","status":"Utilized"}]}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
