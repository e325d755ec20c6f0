package handler

import (
	"net/http"

	"github.com/boddenberg/erp-finance-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// HR: attendance grid, payroll, employee profile
// ============================================================

func attendanceHandler(svc *service.HRService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/hr/attendance")
		defer span.End()

		q, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		grid, err := svc.Attendance(ctx, SessionFromContext(ctx), q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, grid)
	}
}

func payrollHandler(svc *service.HRService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/hr/payroll")
		defer span.End()

		q, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		sheet, err := svc.Payroll(ctx, SessionFromContext(ctx), q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sheet)
	}
}

func employeeSummaryHandler(svc *service.HRService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/hr/employees/{employeeId}/summary")
		defer span.End()

		q, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		summary, err := svc.EmployeeSummary(ctx, SessionFromContext(ctx), chi.URLParam(r, "employeeId"), q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
