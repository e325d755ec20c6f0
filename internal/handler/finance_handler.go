package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Finance: operations, creation dialog, history
// ============================================================

func operationsHandler(svc *service.FinanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Operations())
	}
}

func operationOptionsHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/operations/{kind}/options")
		defer span.End()

		kind := domain.OperationKind(strings.ToUpper(chi.URLParam(r, "kind")))
		span.SetAttributes(attribute.String("operation.kind", string(kind)))

		opts, err := svc.Options(ctx, SessionFromContext(ctx), kind)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, opts)
	}
}

// validateTransactionHandler answers 200 for every decodable draft; the body
// says whether it is valid.
func validateTransactionHandler(svc *service.FinanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/finance/transactions/validate")
		defer span.End()

		var draft domain.TransactionDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result := svc.Validate(draft)
		writeJSON(w, http.StatusOK, domain.ValidationResponse{
			Valid:      result.Valid(),
			Violations: result.Violations,
		})
	}
}

func submitTransactionHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/finance/transactions")
		defer span.End()

		var draft domain.TransactionDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.Submit(ctx, SessionFromContext(ctx), draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func transactionHistoryHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/finance/transactions")
		defer span.End()

		q, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		filter := domain.TransactionFilter{
			OperationKind: domain.OperationKind(strings.ToUpper(r.URL.Query().Get("operationKind"))),
			AccountID:     domain.AccountRef(r.URL.Query().Get("accountId")),
		}

		history, err := svc.History(ctx, SessionFromContext(ctx), q, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}
