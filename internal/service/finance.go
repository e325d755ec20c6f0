package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/finance"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/observability"
	"github.com/boddenberg/erp-finance-bfa/internal/period"
	"github.com/boddenberg/erp-finance-bfa/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var financeTracer = otel.Tracer("service/finance")

// FinanceService backs the transaction creation dialog and the transaction
// history screen.
type FinanceService struct {
	gateway    port.FinanceGateway
	accounts   port.Cache[[]domain.Account]
	categories port.Cache[[]domain.Category]
	metrics    *observability.Metrics
	logger     *zap.Logger

	// enforceAccountClasses re-checks submitted account ids against the
	// caller's account list and the rule's allowed classes.
	enforceAccountClasses bool

	now    func() time.Time
	newKey func() string
}

// FinanceOption customises a FinanceService.
type FinanceOption func(*FinanceService)

// WithAccountClassCheck toggles the account class check on submit.
func WithAccountClassCheck(enabled bool) FinanceOption {
	return func(s *FinanceService) { s.enforceAccountClasses = enabled }
}

// WithFinanceClock overrides the clock used for period defaults and
// missing transaction dates.
func WithFinanceClock(now func() time.Time) FinanceOption {
	return func(s *FinanceService) { s.now = now }
}

// WithIdempotencyKeys overrides the idempotency key generator.
func WithIdempotencyKeys(gen func() string) FinanceOption {
	return func(s *FinanceService) { s.newKey = gen }
}

// NewFinanceService creates the finance service with all dependencies injected.
func NewFinanceService(
	gateway port.FinanceGateway,
	accounts port.Cache[[]domain.Account],
	categories port.Cache[[]domain.Category],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...FinanceOption,
) *FinanceService {
	s := &FinanceService{
		gateway:               gateway,
		accounts:              accounts,
		categories:            categories,
		metrics:               metrics,
		logger:                logger,
		enforceAccountClasses: true,
		now:                   time.Now,
		newKey:                uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Operations returns the rule table, in display order.
func (s *FinanceService) Operations() []finance.OperationRule {
	return finance.Rules()
}

// Options returns the accounts and categories the creation form may offer
// for kind.
func (s *FinanceService) Options(ctx context.Context, sess *domain.Session, kind domain.OperationKind) (*finance.OperationOptions, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.Options")
	defer span.End()
	span.SetAttributes(attribute.String("operation.kind", string(kind)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("options", time.Since(start))
	}()

	rule, err := finance.RuleFor(kind)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "kind", Message: err.Error()}
	}

	var (
		accounts   []domain.Account
		categories []domain.Category
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.listAccounts(gCtx, sess)
		accounts = a
		return err
	})
	if rule.RequiresCategory {
		g.Go(func() error {
			c, err := s.listCategories(gCtx, sess)
			categories = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts, err := finance.Options(kind, accounts, categories)
	if err != nil {
		return nil, err
	}
	return &opts, nil
}

// Validate checks a draft without touching the ERP.
func (s *FinanceService) Validate(draft domain.TransactionDraft) domain.ValidationResult {
	result := finance.Validate(draft)
	s.recordViolations(result)
	return result
}

// Submit validates a draft and posts it to the ERP. A draft with violations
// yields *domain.ErrDraftInvalid and is never sent.
func (s *FinanceService) Submit(ctx context.Context, sess *domain.Session, draft domain.TransactionDraft) (*domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("operation.kind", string(draft.OperationKind)),
		attribute.String("user.id", sess.Subject),
	)

	result := s.Validate(draft)
	if !result.Valid() {
		s.metrics.IncrSubmission(string(draft.OperationKind), "rejected")
		return nil, &domain.ErrDraftInvalid{Violations: result.Violations}
	}

	if s.enforceAccountClasses {
		accounts, err := s.listAccounts(ctx, sess)
		if err != nil {
			return nil, err
		}
		result = finance.ValidateAccounts(draft, finance.IndexAccounts(accounts))
		if !result.Valid() {
			s.recordViolations(result)
			s.metrics.IncrSubmission(string(draft.OperationKind), "rejected")
			return nil, &domain.ErrDraftInvalid{Violations: result.Violations}
		}
	}

	if draft.OccurredAt.IsZero() {
		draft.OccurredAt = s.now().UTC()
	}

	key := s.newKey()
	tx, err := s.gateway.CreateTransaction(ctx, sess.Token, &draft, key)
	if err != nil {
		s.logger.Error("create transaction failed",
			zap.String("user_id", sess.Subject),
			zap.String("operation_kind", string(draft.OperationKind)),
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
		s.metrics.IncrUpstreamError("create_transaction")
		s.metrics.IncrSubmission(string(draft.OperationKind), "failed")
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	// Balances moved.
	s.accounts.Delete(accountsKey(sess))
	s.metrics.IncrSubmission(string(draft.OperationKind), "created")

	s.logger.Info("transaction created",
		zap.String("user_id", sess.Subject),
		zap.String("transaction_id", tx.ID),
		zap.String("operation_kind", string(draft.OperationKind)),
		zap.String("amount", draft.Amount.String()),
	)
	return tx, nil
}

// History lists the transactions of a period.
func (s *FinanceService) History(ctx context.Context, sess *domain.Session, q period.Query, f domain.TransactionFilter) (*domain.TransactionHistory, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.History")
	defer span.End()

	if f.OperationKind != "" && !f.OperationKind.Valid() {
		return nil, &domain.ErrValidation{Field: "operationKind", Message: fmt.Sprintf("unknown operation kind %q", f.OperationKind)}
	}

	q, r, err := resolvePeriod(q, s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("period", r.String()))

	items, err := s.gateway.ListTransactions(ctx, sess.Token, r, f)
	if err != nil {
		s.metrics.IncrUpstreamError("transactions")
		return nil, fmt.Errorf("transactions fetch: %w", err)
	}
	if items == nil {
		items = []domain.Transaction{}
	}
	return &domain.TransactionHistory{Period: r, PeriodType: q.Type, Items: items}, nil
}

func (s *FinanceService) listAccounts(ctx context.Context, sess *domain.Session) ([]domain.Account, error) {
	key := accountsKey(sess)
	if cached, ok := s.accounts.Get(key); ok {
		s.metrics.IncrCacheHit("accounts")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("accounts")

	accounts, err := s.gateway.ListAccounts(ctx, sess.Token)
	if err != nil {
		s.logger.Error("failed to fetch accounts",
			zap.String("user_id", sess.Subject),
			zap.Error(err),
		)
		s.metrics.IncrUpstreamError("accounts")
		return nil, fmt.Errorf("accounts fetch: %w", err)
	}
	s.accounts.Set(key, accounts)
	return accounts, nil
}

func (s *FinanceService) listCategories(ctx context.Context, sess *domain.Session) ([]domain.Category, error) {
	key := "categories:" + sess.Subject
	if cached, ok := s.categories.Get(key); ok {
		s.metrics.IncrCacheHit("categories")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("categories")

	categories, err := s.gateway.ListCategories(ctx, sess.Token)
	if err != nil {
		s.logger.Error("failed to fetch categories",
			zap.String("user_id", sess.Subject),
			zap.Error(err),
		)
		s.metrics.IncrUpstreamError("categories")
		return nil, fmt.Errorf("categories fetch: %w", err)
	}
	s.categories.Set(key, categories)
	return categories, nil
}

func (s *FinanceService) recordViolations(result domain.ValidationResult) {
	for _, v := range result.Violations {
		s.metrics.IncrViolation(string(v.Kind))
	}
}

func accountsKey(sess *domain.Session) string {
	return "accounts:" + sess.Subject
}
