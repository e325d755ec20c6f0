package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/period"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

// draftErrorResponse is the 422 body of a rejected transaction submit.
type draftErrorResponse struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parsePeriodQuery reads periodType, month, dateFrom and dateTo. Missing
// values stay zero and are defaulted by the services.
func parsePeriodQuery(r *http.Request) (period.Query, error) {
	var q period.Query
	params := r.URL.Query()

	if v := strings.TrimSpace(params.Get("periodType")); v != "" {
		t, err := period.ParseType(strings.ToUpper(v))
		if err != nil {
			return q, &domain.ErrValidation{Field: "periodType", Message: err.Error()}
		}
		q.Type = t
	}
	if v := strings.TrimSpace(params.Get("month")); v != "" {
		m, err := period.ParseMonth(v)
		if err != nil {
			return q, &domain.ErrValidation{Field: "month", Message: err.Error()}
		}
		q.Month = m
	}
	for _, p := range []struct {
		name string
		dst  **period.Date
	}{
		{"dateFrom", &q.From},
		{"dateTo", &q.To},
	} {
		v := strings.TrimSpace(params.Get(p.name))
		if v == "" {
			continue
		}
		d, err := period.ParseDate(v)
		if err != nil {
			return q, &domain.ErrValidation{Field: p.name, Message: err.Error()}
		}
		*p.dst = &d
	}
	return q, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var draftInvalid *domain.ErrDraftInvalid
	var forbidden *domain.ErrForbidden
	var unauthorized *domain.ErrUnauthorized
	var conflict *domain.ErrConflict
	var rejected *domain.ErrUpstreamRejected
	var external *domain.ErrExternalService
	var configuration *domain.ErrConfiguration

	switch {
	case errors.As(err, &draftInvalid):
		logger.Debug("transaction draft rejected", zap.Int("violations", len(draftInvalid.Violations)))
		writeJSON(w, http.StatusUnprocessableEntity, draftErrorResponse{
			Error:      "transaction draft invalid",
			Violations: draftInvalid.Violations,
		})
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &rejected):
		logger.Warn("upstream rejected request",
			zap.Int("upstream_status", rejected.Status),
			zap.String("error", rejected.Message),
		)
		writeError(w, http.StatusUnprocessableEntity, rejected.Message)
	case errors.As(err, &configuration):
		logger.Error("configuration error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	case errors.As(err, &external):
		logger.Error("upstream failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream service unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
