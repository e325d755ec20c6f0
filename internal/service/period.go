package service

import (
	"errors"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/period"
)

// PeriodService answers the period filter bar: the default selection and
// ad-hoc resolutions.
type PeriodService struct {
	now func() time.Time
}

// NewPeriodService creates a period service reading the given clock.
func NewPeriodService(now func() time.Time) *PeriodService {
	if now == nil {
		now = time.Now
	}
	return &PeriodService{now: now}
}

// Default returns the selection pre-filled on first render.
func (s *PeriodService) Default() (*domain.PeriodSelection, error) {
	return s.Resolve(period.Query{})
}

// Resolve fills the query defaults and resolves it.
func (s *PeriodService) Resolve(q period.Query) (*domain.PeriodSelection, error) {
	q, r, err := resolvePeriod(q, s.now())
	if err != nil {
		return nil, err
	}
	return selection(q, r), nil
}

func selection(q period.Query, r period.Resolved) *domain.PeriodSelection {
	return &domain.PeriodSelection{
		PeriodType: q.Type,
		Month:      q.Month.String(),
		Period:     r,
		Days:       r.Days(),
	}
}

// resolvePeriod applies defaults for today and turns resolution failures into
// validation errors naming the offending query parameter.
func resolvePeriod(q period.Query, today time.Time) (period.Query, period.Resolved, error) {
	q = q.WithDefaults(today)
	r, err := q.Resolve()
	if err == nil {
		return q, r, nil
	}

	field := "period"
	switch {
	case errors.Is(err, period.ErrUnknownType):
		field = "periodType"
	case errors.Is(err, period.ErrInvalidMonth):
		field = "month"
	case errors.Is(err, period.ErrMissingBounds), errors.Is(err, period.ErrInvertedPeriod):
		field = "dateFrom"
	}
	return q, period.Resolved{}, &domain.ErrValidation{Field: field, Message: err.Error()}
}
