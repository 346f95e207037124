package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/OmkarVetal12/synlawn/api/responses"
	"github.com/OmkarVetal12/synlawn/api/validators"
	"github.com/OmkarVetal12/synlawn/internal/workflow"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
)

const maxFilterLen = 200

// WorkflowRegistry is the workflow surface the HTTP host needs.
type WorkflowRegistry interface {
	Create(ctx context.Context, mode enums.WorkflowMode, parentID string) (*workflow.Workflow, error)
	Get(id string) (*workflow.Workflow, error)
	Remove(id string)
}

type createWorkflowRequest struct {
	Mode     string `json:"mode" validate:"required,oneof=hold consume"`
	ParentID string `json:"parent_id" validate:"required,max=64"`
}

type selectionRequest struct {
	DemandLineID string `json:"demand_line_id" validate:"required,max=64"`
	Selected     bool   `json:"selected"`
}

type quantityRequest struct {
	Quantity string `json:"quantity" validate:"max=64"`
}

// WorkflowCreate creates a hold or consume workflow and loads its demand lines.
func WorkflowCreate(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createWorkflowRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := enums.ParseWorkflowMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid workflow mode"))
			return
		}

		wf, err := reg.Create(r.Context(), mode, strings.TrimSpace(payload.ParentID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, wf.State())
	}
}

func WorkflowGet(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		responses.WriteSuccess(w, wf.State())
	})
}

// WorkflowDelete drops a workflow. Persisted drafts are kept.
func WorkflowDelete(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		if wf.Busy() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, workflow.BusyMessage))
			return
		}
		reg.Remove(wf.ID())
		w.WriteHeader(http.StatusNoContent)
	})
}

// WorkflowStart reloads the demand lines while on SELECT.
func WorkflowStart(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		if err := wf.Start(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wf.State())
	})
}

func WorkflowSelection(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		var payload selectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := wf.Toggle(payload.DemandLineID, payload.Selected); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wf.State())
	})
}

func WorkflowNext(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		if err := wf.Next(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wf.State())
	})
}

func WorkflowBack(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		if err := wf.Back(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wf.State())
	})
}

// WorkflowSetQuantity records a proposed quantity for one row. The stored
// value is clamped, so the response carries the row as accepted.
func WorkflowSetQuantity(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		var payload quantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := wf.OnQuantityInput(r.Context(), chi.URLParam(r, "productItemID"), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	})
}

// WorkflowRows applies the product and location filter and lists visible rows.
func WorkflowRows(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		query := r.URL.Query()
		wf.OnFilterChange(
			validators.SanitizeString(query.Get("product"), maxFilterLen),
			validators.SanitizeString(query.Get("location"), maxFilterLen),
		)
		responses.WriteSuccess(w, wf.VisibleRows())
	})
}

func WorkflowValidate(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		responses.WriteSuccess(w, wf.Validate())
	})
}

func WorkflowErrors(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		responses.WriteSuccess(w, wf.ErrorLedgerSummary())
	})
}

// WorkflowConfirm submits the batch and returns it.
func WorkflowConfirm(reg WorkflowRegistry, logg *logger.Logger) http.HandlerFunc {
	return withWorkflow(reg, logg, func(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) {
		batch, err := wf.Confirm(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"batch": batch,
			"state": wf.State(),
		})
	})
}

func withWorkflow(reg WorkflowRegistry, logg *logger.Logger, fn func(http.ResponseWriter, *http.Request, *workflow.Workflow)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workflow registry unavailable"))
			return
		}
		wf, err := reg.Get(chi.URLParam(r, "workflowID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithWorkflowID(ctx, wf.ID())
		}
		fn(w, r.WithContext(ctx), wf)
	}
}
