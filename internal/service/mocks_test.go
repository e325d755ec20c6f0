package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/cache"
	"github.com/boddenberg/erp-finance-bfa/internal/period"
)

// --- Mocks ---

type mockFinanceGateway struct {
	mu sync.Mutex

	accounts      []domain.Account
	accountsErr   error
	categories    []domain.Category
	categoriesErr error
	created       *domain.Transaction
	createErr     error
	history       []domain.Transaction
	historyErr    error

	accountCalls   int
	categoryCalls  int
	createdDrafts  []domain.TransactionDraft
	idempotencyKey string
	tokens         []string
	historyPeriod  period.Resolved
	historyFilter  domain.TransactionFilter
}

func (m *mockFinanceGateway) ListAccounts(_ context.Context, token string) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountCalls++
	m.tokens = append(m.tokens, token)
	return m.accounts, m.accountsErr
}

func (m *mockFinanceGateway) ListCategories(_ context.Context, token string) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoryCalls++
	m.tokens = append(m.tokens, token)
	return m.categories, m.categoriesErr
}

func (m *mockFinanceGateway) CreateTransaction(_ context.Context, token string, draft *domain.TransactionDraft, key string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	m.createdDrafts = append(m.createdDrafts, *draft)
	m.idempotencyKey = key
	return m.created, m.createErr
}

func (m *mockFinanceGateway) ListTransactions(_ context.Context, token string, p period.Resolved, f domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	m.historyPeriod = p
	m.historyFilter = f
	return m.history, m.historyErr
}

type mockHRGateway struct {
	attendance    []domain.AttendanceRow
	attendanceErr error
	payroll       []domain.PayrollRow
	payrollErr    error

	mu        sync.Mutex
	periods   []period.Resolved
	employees []string
}

func (m *mockHRGateway) GetAttendance(_ context.Context, _ string, p period.Resolved, employeeID string) ([]domain.AttendanceRow, error) {
	m.record(p, employeeID)
	return m.attendance, m.attendanceErr
}

func (m *mockHRGateway) ListPayroll(_ context.Context, _ string, p period.Resolved, employeeID string) ([]domain.PayrollRow, error) {
	m.record(p, employeeID)
	return m.payroll, m.payrollErr
}

func (m *mockHRGateway) record(p period.Resolved, employeeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods = append(m.periods, p)
	m.employees = append(m.employees, employeeID)
}

type mockAuthenticator struct {
	resp *domain.LoginResponse
	err  error
	got  *domain.LoginRequest
}

func (m *mockAuthenticator) Login(_ context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	m.got = req
	return m.resp, m.err
}

// --- Helpers ---

func testSession() *domain.Session {
	return &domain.Session{Subject: "user-1", Name: "Dana", Role: domain.RoleAccountant, Token: "tok-1"}
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 10, 0, 0, 0, time.UTC) }
}

func newCache[T any](t *testing.T) *cache.InMemory[T] {
	t.Helper()
	c := cache.New[T](5 * time.Minute)
	t.Cleanup(c.Close)
	return c
}
