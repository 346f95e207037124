package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/OmkarVetal12/synlawn/api/responses"
	"github.com/OmkarVetal12/synlawn/api/validators"
	"github.com/OmkarVetal12/synlawn/internal/quotes"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
)

// QuoteOptionsService reads and saves the option groups of a quote.
type QuoteOptionsService interface {
	Options(ctx context.Context, quoteID uuid.UUID) ([]quotes.OptionFamily, error)
	SaveOptions(ctx context.Context, quoteID uuid.UUID, choices []quotes.Choice) ([]quotes.OptionFamily, error)
}

type saveOptionsRequest struct {
	Choices []quotes.Choice `json:"choices" validate:"dive"`
}

func QuoteOptions(svc QuoteOptionsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		quoteID, err := uuidParam(r, "quoteID", "invalid quote id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		families, err := svc.Options(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, families)
	}
}

// QuoteSaveOptions applies the customer's choices and persists the selection.
func QuoteSaveOptions(svc QuoteOptionsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}
		quoteID, err := uuidParam(r, "quoteID", "invalid quote id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload saveOptionsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		families, err := svc.SaveOptions(r.Context(), quoteID, payload.Choices)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, families)
	}
}

func uuidParam(r *http.Request, name, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
	}
	return id, nil
}
