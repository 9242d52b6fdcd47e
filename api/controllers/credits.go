package controllers

import (
	"net/http"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/responses"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/validators"
	creditsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/pagination"
)

// GetCreditBalance returns the organization's current credit balance.
func GetCreditBalance(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"balance": balance})
	}
}

// ListCreditTransactions returns the organization's credit ledger, newest
// first.
func ListCreditTransactions(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transactions, err := svc.ListTransactions(r.Context(), orgID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transactions)
	}
}
