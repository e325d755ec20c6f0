package erp

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/period"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ============================================================
// Finance: accounts, categories, transactions
// ============================================================

// ListAccounts fetches every financial account visible to the token's owner.
func (c *Client) ListAccounts(ctx context.Context, token string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "ERP.ListAccounts")
	defer span.End()

	var accounts []domain.Account
	err := c.call(ctx, "accounts", func() error {
		accounts = nil
		return c.do(ctx, request{
			op: "accounts", method: http.MethodGet, path: "/finance/accounts", token: token,
			resource: "accounts",
		}, &accounts)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("accounts.count", len(accounts)))
	return accounts, nil
}

// ListCategories fetches transaction categories and subcategories.
func (c *Client) ListCategories(ctx context.Context, token string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "ERP.ListCategories")
	defer span.End()

	var categories []domain.Category
	err := c.call(ctx, "categories", func() error {
		categories = nil
		return c.do(ctx, request{
			op: "categories", method: http.MethodGet, path: "/finance/categories", token: token,
			resource: "categories",
		}, &categories)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return categories, nil
}

// CreateTransaction posts a validated draft. The idempotency key makes
// retries of the POST safe.
func (c *Client) CreateTransaction(ctx context.Context, token string, draft *domain.TransactionDraft, idempotencyKey string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ERP.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("operation.kind", string(draft.OperationKind)),
		attribute.String("idempotency.key", idempotencyKey),
	)

	var tx domain.Transaction
	err := c.call(ctx, "create_transaction", func() error {
		tx = domain.Transaction{}
		return c.do(ctx, request{
			op:      "create_transaction",
			method:  http.MethodPost,
			path:    "/finance/transactions",
			token:   token,
			body:    draft,
			headers: map[string]string{"Idempotency-Key": idempotencyKey},
		}, &tx)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &tx, nil
}

// ListTransactions fetches the transaction history for a resolved period.
func (c *Client) ListTransactions(ctx context.Context, token string, p period.Resolved, f domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ERP.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("period", p.String()))

	q := periodQuery(p)
	if f.OperationKind != "" {
		q.Set("operationKind", string(f.OperationKind))
	}
	if f.AccountID != "" {
		q.Set("accountId", string(f.AccountID))
	}

	var txs []domain.Transaction
	err := c.call(ctx, "transactions", func() error {
		txs = nil
		return c.do(ctx, request{
			op: "transactions", method: http.MethodGet, path: "/finance/transactions", token: token,
			query: q, resource: "transactions",
		}, &txs)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return txs, nil
}

// periodQuery renders a resolved period as the ERP's dateFrom/dateTo parameters.
func periodQuery(p period.Resolved) url.Values {
	q := url.Values{}
	q.Set("dateFrom", p.From.String())
	q.Set("dateTo", p.To.String())
	return q
}
