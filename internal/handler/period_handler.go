package handler

import (
	"net/http"

	"github.com/boddenberg/erp-finance-bfa/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Period filter bar
// ============================================================

func defaultPeriodHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := svc.Default()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sel)
	}
}

func resolvePeriodHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		sel, err := svc.Resolve(q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sel)
	}
}
