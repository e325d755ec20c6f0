package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/handler"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/cache"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/erp"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/observability"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/resilience"
	"github.com/boddenberg/erp-finance-bfa/internal/service"

	"go.uber.org/zap"
)

// newIntegrationRouter wires the real ERP client against erpServer.
func newIntegrationRouter(t *testing.T, erpServer *httptest.Server, maxRetries int) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("test-"+t.Name(), erp.BreakerSuccess)
	cfg := resilience.Config{MaxRetries: maxRetries, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	client := erp.NewClient(&http.Client{Timeout: 5 * time.Second}, erpServer.URL, cb, cfg, logger)

	accounts := cache.New[[]domain.Account](5 * time.Minute)
	categories := cache.New[[]domain.Category](5 * time.Minute)
	t.Cleanup(accounts.Close)
	t.Cleanup(categories.Close)

	return handler.NewRouter(handler.Services{
		Auth:    service.NewAuthService(client, secret, logger),
		Finance: service.NewFinanceService(client, accounts, categories, metrics, logger),
		HR:      service.NewHRService(client, metrics, logger, nil),
		Periods: service.NewPeriodService(nil),
		ERP:     client,
	}, metrics, nil, logger)
}

// TestIntegration_SubmitFlow spins up a mock ERP and runs a transaction
// submit through router, service and HTTP client.
func TestIntegration_SubmitFlow(t *testing.T) {
	auth := bearer(t, domain.RoleAccountant)
	token := strings.TrimPrefix(auth, "Bearer ")

	var posted domain.TransactionDraft
	var idempotencyKey string

	erpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/finance/accounts":
			json.NewEncoder(w).Encode([]domain.Account{
				{ID: "cash-1", Name: "Till", Class: domain.AccountCashbox},
				{ID: "sup-1", Name: "Acme Supplies", Class: domain.AccountSupplier},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/finance/transactions":
			idempotencyKey = r.Header.Get("Idempotency-Key")
			json.NewDecoder(r.Body).Decode(&posted)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(domain.Transaction{ID: "tx-100", Amount: posted.Amount, OperationKind: posted.OperationKind})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer erpServer.Close()

	router := newIntegrationRouter(t, erpServer, 1)

	body, _ := json.Marshal(map[string]any{
		"amount":               "150.00",
		"operationKind":        "PAYMENT_TO_SUPP",
		"sourceAccountId":      "cash-1",
		"destinationAccountId": "sup-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/finance/transactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var result domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ID != "tx-100" {
		t.Errorf("expected id 'tx-100', got '%s'", result.ID)
	}
	if idempotencyKey == "" {
		t.Error("expected an Idempotency-Key header on the ERP call")
	}
	if posted.OccurredAt.IsZero() {
		t.Error("expected occurredAt to be filled before posting")
	}
}

// TestIntegration_UpstreamUnavailable maps a failing ERP to 502.
func TestIntegration_UpstreamUnavailable(t *testing.T) {
	erpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer erpServer.Close()

	router := newIntegrationRouter(t, erpServer, 0)

	req := httptest.NewRequest(http.MethodGet, "/v1/hr/payroll", nil)
	req.Header.Set("Authorization", bearer(t, domain.RoleHR))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d. Body: %s", rec.Code, rec.Body.String())
	}
}

// TestIntegration_ERPRejectsToken surfaces an upstream 401 to the caller.
func TestIntegration_ERPRejectsToken(t *testing.T) {
	erpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"session revoked"}`))
	}))
	defer erpServer.Close()

	router := newIntegrationRouter(t, erpServer, 2)

	req := httptest.NewRequest(http.MethodGet, "/v1/finance/transactions", nil)
	req.Header.Set("Authorization", bearer(t, domain.RoleAccountant))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
