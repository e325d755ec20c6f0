// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/period"
)

// Authenticator exchanges credentials for an ERP access token.
type Authenticator interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
}

// FinanceGateway reads and writes ERP finance data on behalf of a user.
// Every method takes the caller's bearer token explicitly.
type FinanceGateway interface {
	ListAccounts(ctx context.Context, token string) ([]domain.Account, error)
	ListCategories(ctx context.Context, token string) ([]domain.Category, error)
	CreateTransaction(ctx context.Context, token string, draft *domain.TransactionDraft, idempotencyKey string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, token string, p period.Resolved, f domain.TransactionFilter) ([]domain.Transaction, error)
}

// HRGateway reads attendance and payroll for a resolved period.
// An empty employeeID means every employee.
type HRGateway interface {
	GetAttendance(ctx context.Context, token string, p period.Resolved, employeeID string) ([]domain.AttendanceRow, error)
	ListPayroll(ctx context.Context, token string, p period.Resolved, employeeID string) ([]domain.PayrollRow, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
