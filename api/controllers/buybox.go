package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/responses"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/validators"
	buyboxsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/buybox"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	pkgerrors "github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
)

type startMonitoringRequest struct {
	ProductID             string `json:"product_id" validate:"required,uuid"`
	Marketplace           string `json:"marketplace" validate:"required"`
	CheckFrequencyMinutes int    `json:"check_frequency_minutes" validate:"omitempty,min=5,max=1440"`
}

// StartBuyBoxMonitoring begins tracking one product on one marketplace. The
// first snapshot is captured before the call returns.
func StartBuyBoxMonitoring(svc buyboxsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload startMonitoringRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		marketplace, err := enums.ParseMarketplace(strings.TrimSpace(payload.Marketplace))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid marketplace"))
			return
		}

		history, err := svc.InitializeMonitoring(r.Context(), buyboxsvc.InitializeMonitoringInput{
			OrgID:                 orgID,
			ProductID:             productID,
			Marketplace:           marketplace,
			CheckFrequencyMinutes: payload.CheckFrequencyMinutes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, history)
	}
}

// StopBuyBoxMonitoring disables checks for the product while keeping its
// history.
func StopBuyBoxMonitoring(svc buyboxsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		marketplace, err := enums.ParseMarketplace(strings.TrimSpace(chi.URLParam(r, "marketplace")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid marketplace"))
			return
		}

		if err := svc.StopMonitoring(r.Context(), orgID, productID, marketplace); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "stopped"})
	}
}

// GetBuyBoxHistory returns the snapshot history and rolling statistics for
// one product and marketplace.
func GetBuyBoxHistory(svc buyboxsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		marketplace, err := enums.ParseMarketplace(strings.TrimSpace(chi.URLParam(r, "marketplace")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid marketplace"))
			return
		}

		history, err := svc.GetHistory(r.Context(), orgID, productID, marketplace)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// ListBuyBoxHistories returns every monitored product for the organization.
func ListBuyBoxHistories(svc buyboxsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		histories, err := svc.ListHistories(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, histories)
	}
}
