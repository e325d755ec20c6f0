package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/handler"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/cache"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/observability"
	"github.com/boddenberg/erp-finance-bfa/internal/period"
	"github.com/boddenberg/erp-finance-bfa/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "handler-test-secret"

// --- Stub ERP ---

type stubERP struct {
	accounts   []domain.Account
	categories []domain.Category
	created    []domain.TransactionDraft
	attendance []domain.AttendanceRow
	payroll    []domain.PayrollRow
	lastPeriod period.Resolved
	loginErr   error
}

func (s *stubERP) Login(_ context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &domain.LoginResponse{AccessToken: "erp-token", UserID: "u-" + req.Username, Role: domain.RoleAccountant}, nil
}

func (s *stubERP) ListAccounts(context.Context, string) ([]domain.Account, error) {
	return s.accounts, nil
}

func (s *stubERP) ListCategories(context.Context, string) ([]domain.Category, error) {
	return s.categories, nil
}

func (s *stubERP) CreateTransaction(_ context.Context, _ string, d *domain.TransactionDraft, _ string) (*domain.Transaction, error) {
	s.created = append(s.created, *d)
	return &domain.Transaction{ID: "tx-1", Amount: d.Amount, OperationKind: d.OperationKind}, nil
}

func (s *stubERP) ListTransactions(_ context.Context, _ string, p period.Resolved, _ domain.TransactionFilter) ([]domain.Transaction, error) {
	s.lastPeriod = p
	return []domain.Transaction{}, nil
}

func (s *stubERP) GetAttendance(_ context.Context, _ string, p period.Resolved, _ string) ([]domain.AttendanceRow, error) {
	s.lastPeriod = p
	return s.attendance, nil
}

func (s *stubERP) ListPayroll(_ context.Context, _ string, p period.Resolved, _ string) ([]domain.PayrollRow, error) {
	s.lastPeriod = p
	return s.payroll, nil
}

// --- Fixture ---

func newAPI(t *testing.T, erp *stubERP) http.Handler {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, time.February, 20, 9, 0, 0, 0, time.UTC) }
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	accounts := cache.New[[]domain.Account](time.Minute)
	categories := cache.New[[]domain.Category](time.Minute)
	t.Cleanup(accounts.Close)
	t.Cleanup(categories.Close)

	return handler.NewRouter(handler.Services{
		Auth:    service.NewAuthService(erp, secret, logger),
		Finance: service.NewFinanceService(erp, accounts, categories, metrics, logger, service.WithFinanceClock(clock)),
		HR:      service.NewHRService(erp, metrics, logger, clock),
		Periods: service.NewPeriodService(clock),
	}, metrics, []string{"http://localhost:5173"}, logger)
}

func bearer(t *testing.T, role domain.Role) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.SessionClaims{
		Role: role,
		Name: "Test User",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-" + string(role),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, h http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

var bankAccounts = []domain.Account{
	{ID: "cash-1", Class: domain.AccountCashbox},
	{ID: "bank-1", Class: domain.AccountBank},
}

// --- Tests ---

func TestLoginHandler(t *testing.T) {
	api := newAPI(t, &stubERP{})

	rec := do(t, api, http.MethodPost, "/v1/auth/login", "", `{"username":"dana","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[domain.LoginResponse](t, rec)
	assert.Equal(t, "erp-token", resp.AccessToken)

	rec = do(t, api, http.MethodPost, "/v1/auth/login", "", `{"username":"dana"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, api, http.MethodPost, "/v1/auth/login", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	api := newAPI(t, &stubERP{loginErr: &domain.ErrUnauthorized{}})

	rec := do(t, api, http.MethodPost, "/v1/auth/login", "", `{"username":"dana","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	api := newAPI(t, &stubERP{})

	assert.Equal(t, http.StatusUnauthorized, do(t, api, http.MethodGet, "/v1/navigation", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, api, http.MethodGet, "/v1/navigation", "Token abc", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, api, http.MethodGet, "/v1/navigation", "Bearer abc", "").Code)
}

func TestMeAndNavigation(t *testing.T) {
	api := newAPI(t, &stubERP{})

	rec := do(t, api, http.MethodGet, "/v1/auth/me", bearer(t, domain.RoleHR), "")
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decode[domain.Session](t, rec)
	assert.Equal(t, "user-hr", sess.Subject)
	assert.Empty(t, sess.Token)

	rec = do(t, api, http.MethodGet, "/v1/navigation", bearer(t, domain.RoleHR), "")
	require.Equal(t, http.StatusOK, rec.Code)
	nav := decode[domain.Navigation](t, rec)
	assert.Len(t, nav.Sections, 3)
}

func TestRoleGating(t *testing.T) {
	api := newAPI(t, &stubERP{})

	assert.Equal(t, http.StatusForbidden, do(t, api, http.MethodGet, "/v1/finance/operations", bearer(t, domain.RoleHR), "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, api, http.MethodGet, "/v1/hr/payroll", bearer(t, domain.RoleAccountant), "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, api, http.MethodGet, "/v1/hr/payroll", bearer(t, domain.RoleWarehouse), "").Code)
	assert.Equal(t, http.StatusOK, do(t, api, http.MethodGet, "/v1/finance/operations", bearer(t, domain.RoleAdmin), "").Code)
	assert.Equal(t, http.StatusOK, do(t, api, http.MethodGet, "/v1/hr/payroll", bearer(t, domain.RoleAdmin), "").Code)
}

func TestOperationOptionsHandler(t *testing.T) {
	api := newAPI(t, &stubERP{accounts: bankAccounts})

	rec := do(t, api, http.MethodGet, "/v1/finance/operations/transfer/options", bearer(t, domain.RoleAccountant), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rule struct {
			Kind string `json:"operationKind"`
		} `json:"rule"`
		SourceAccounts []domain.Account `json:"sourceAccounts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "TRANSFER", body.Rule.Kind)
	assert.Len(t, body.SourceAccounts, 2)

	rec = do(t, api, http.MethodGet, "/v1/finance/operations/refund/options", bearer(t, domain.RoleAccountant), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateHandler_AlwaysOK(t *testing.T) {
	api := newAPI(t, &stubERP{})

	rec := do(t, api, http.MethodPost, "/v1/finance/transactions/validate", bearer(t, domain.RoleAccountant),
		`{"amount":"0","operationKind":"TRANSFER","sourceAccountId":"cash-1","destinationAccountId":"cash-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[domain.ValidationResponse](t, rec)
	assert.False(t, resp.Valid)
	assert.Equal(t, []domain.Violation{
		{Field: domain.FieldAmount, Kind: domain.NonPositiveAmount},
		{Field: domain.FieldDestinationAccountID, Kind: domain.SourceEqualsDestination},
	}, resp.Violations)

	rec = do(t, api, http.MethodPost, "/v1/finance/transactions/validate", bearer(t, domain.RoleAccountant),
		`{"amount":"10","operationKind":"INCOME","destinationAccountId":"bank-1","categoryId":"c1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[domain.ValidationResponse](t, rec)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Violations)
}

func TestSubmitHandler(t *testing.T) {
	erp := &stubERP{accounts: bankAccounts}
	api := newAPI(t, erp)

	rec := do(t, api, http.MethodPost, "/v1/finance/transactions", bearer(t, domain.RoleAccountant),
		`{"amount":"25.40","operationKind":"TRANSFER","sourceAccountId":"cash-1","destinationAccountId":"bank-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, erp.created, 1)
	assert.True(t, decimal.RequireFromString("25.4").Equal(erp.created[0].Amount))
}

func TestSubmitHandler_Invalid(t *testing.T) {
	erp := &stubERP{accounts: bankAccounts}
	api := newAPI(t, erp)

	rec := do(t, api, http.MethodPost, "/v1/finance/transactions", bearer(t, domain.RoleAccountant),
		`{"amount":"10","operationKind":"EXPENSE","sourceAccountId":"bank-1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error      string             `json:"error"`
		Violations []domain.Violation `json:"violations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, []domain.Violation{{Field: domain.FieldCategoryID, Kind: domain.MissingRequiredCategory}}, body.Violations)
	assert.Empty(t, erp.created)
}

func TestHistoryHandler_PeriodDefaults(t *testing.T) {
	erp := &stubERP{}
	api := newAPI(t, erp)

	rec := do(t, api, http.MethodGet, "/v1/finance/transactions", bearer(t, domain.RoleAccountant), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-02-16", erp.lastPeriod.From.String())
	assert.Equal(t, "2024-02-29", erp.lastPeriod.To.String())

	rec = do(t, api, http.MethodGet, "/v1/finance/transactions?periodType=full_month&month=2023-02", bearer(t, domain.RoleAccountant), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2023-02-01", erp.lastPeriod.From.String())
	assert.Equal(t, "2023-02-28", erp.lastPeriod.To.String())
}

func TestPeriodHandlers(t *testing.T) {
	api := newAPI(t, &stubERP{})
	auth := bearer(t, domain.RoleWarehouse)

	rec := do(t, api, http.MethodGet, "/v1/periods/default", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sel := decode[domain.PeriodSelection](t, rec)
	assert.Equal(t, period.SecondHalf, sel.PeriodType)
	assert.Equal(t, "2024-02", sel.Month)

	rec = do(t, api, http.MethodGet, "/v1/periods/resolve?periodType=CUSTOM&dateFrom=2024-03-01&dateTo=2024-03-10", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sel = decode[domain.PeriodSelection](t, rec)
	assert.Equal(t, 10, sel.Days)

	tests := []string{
		"/v1/periods/resolve?periodType=WEEKLY",
		"/v1/periods/resolve?month=2024-13",
		"/v1/periods/resolve?periodType=CUSTOM&dateFrom=2024-03-01",
		"/v1/periods/resolve?periodType=CUSTOM&dateFrom=2024-03-10&dateTo=2024-03-01",
		"/v1/periods/resolve?periodType=CUSTOM&dateFrom=yesterday&dateTo=2024-03-01",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(t, api, http.MethodGet, path, auth, "").Code)
		})
	}
}

func TestHRHandlers(t *testing.T) {
	erp := &stubERP{
		attendance: []domain.AttendanceRow{
			{EmployeeID: "e1", Date: period.NewDate(2024, time.February, 17), Status: domain.AttendancePresent, HoursWorked: decimal.NewFromInt(8)},
		},
		payroll: []domain.PayrollRow{{EmployeeID: "e1", NetPay: decimal.NewFromInt(500)}},
	}
	api := newAPI(t, erp)
	auth := bearer(t, domain.RoleHR)

	rec := do(t, api, http.MethodGet, "/v1/hr/attendance?periodType=SECOND_HALF&month=2024-02", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	grid := decode[domain.AttendanceGrid](t, rec)
	assert.Len(t, grid.Rows, 1)

	rec = do(t, api, http.MethodGet, "/v1/hr/employees/e1/summary", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[domain.EmployeeSummary](t, rec)
	assert.Equal(t, 1, sum.DaysPresent)
	assert.True(t, decimal.NewFromInt(500).Equal(sum.NetPay))
}
