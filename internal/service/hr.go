package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/observability"
	"github.com/boddenberg/erp-finance-bfa/internal/period"
	"github.com/boddenberg/erp-finance-bfa/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var hrTracer = otel.Tracer("service/hr")

// HRService backs the attendance grid, the payroll sheet and the employee
// profile.
type HRService struct {
	gateway port.HRGateway
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewHRService creates the HR service. A nil clock reads time.Now.
func NewHRService(gateway port.HRGateway, metrics *observability.Metrics, logger *zap.Logger, now func() time.Time) *HRService {
	if now == nil {
		now = time.Now
	}
	return &HRService{gateway: gateway, metrics: metrics, logger: logger, now: now}
}

// Attendance returns the attendance grid for a period.
func (s *HRService) Attendance(ctx context.Context, sess *domain.Session, q period.Query) (*domain.AttendanceGrid, error) {
	ctx, span := hrTracer.Start(ctx, "HRService.Attendance")
	defer span.End()

	q, r, err := resolvePeriod(q, s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("period", r.String()))

	rows, err := s.attendance(ctx, sess, r, "")
	if err != nil {
		return nil, err
	}
	return &domain.AttendanceGrid{Period: r, PeriodType: q.Type, Rows: rows}, nil
}

// Payroll returns the payroll sheet for a period with its net total.
func (s *HRService) Payroll(ctx context.Context, sess *domain.Session, q period.Query) (*domain.PayrollSheet, error) {
	ctx, span := hrTracer.Start(ctx, "HRService.Payroll")
	defer span.End()

	q, r, err := resolvePeriod(q, s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("period", r.String()))

	rows, err := s.payroll(ctx, sess, r, "")
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.NetPay)
	}
	return &domain.PayrollSheet{Period: r, PeriodType: q.Type, Rows: rows, TotalNet: total}, nil
}

// EmployeeSummary fetches one employee's attendance and payroll concurrently
// and totals them.
func (s *HRService) EmployeeSummary(ctx context.Context, sess *domain.Session, employeeID string, q period.Query) (*domain.EmployeeSummary, error) {
	ctx, span := hrTracer.Start(ctx, "HRService.EmployeeSummary")
	defer span.End()
	span.SetAttributes(attribute.String("employee.id", employeeID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("employee_summary", time.Since(start))
	}()

	if employeeID == "" {
		return nil, &domain.ErrValidation{Field: "employeeId", Message: "employee id is required"}
	}

	q, r, err := resolvePeriod(q, s.now())
	if err != nil {
		return nil, err
	}

	var (
		attendance []domain.AttendanceRow
		payroll    []domain.PayrollRow
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.attendance(gCtx, sess, r, employeeID)
		attendance = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.payroll(gCtx, sess, r, employeeID)
		payroll = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &domain.EmployeeSummary{
		EmployeeID:  employeeID,
		Period:      r,
		PeriodType:  q.Type,
		HoursWorked: decimal.Zero,
		NetPay:      decimal.Zero,
		Attendance:  attendance,
		Payroll:     payroll,
	}
	for _, row := range attendance {
		switch row.Status {
		case domain.AttendancePresent:
			summary.DaysPresent++
		case domain.AttendanceAbsent:
			summary.DaysAbsent++
		}
		summary.HoursWorked = summary.HoursWorked.Add(row.HoursWorked)
	}
	for _, row := range payroll {
		summary.NetPay = summary.NetPay.Add(row.NetPay)
	}
	return summary, nil
}

// attendance fetches rows and drops any the ERP returned outside r.
func (s *HRService) attendance(ctx context.Context, sess *domain.Session, r period.Resolved, employeeID string) ([]domain.AttendanceRow, error) {
	rows, err := s.gateway.GetAttendance(ctx, sess.Token, r, employeeID)
	if err != nil {
		s.logger.Error("failed to fetch attendance",
			zap.String("period", r.String()),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		s.metrics.IncrUpstreamError("attendance")
		return nil, fmt.Errorf("attendance fetch: %w", err)
	}

	inRange := make([]domain.AttendanceRow, 0, len(rows))
	for _, row := range rows {
		if r.Contains(row.Date) {
			inRange = append(inRange, row)
		}
	}
	if dropped := len(rows) - len(inRange); dropped > 0 {
		s.logger.Warn("attendance rows outside requested period",
			zap.String("period", r.String()),
			zap.Int("dropped", dropped),
		)
	}
	return inRange, nil
}

func (s *HRService) payroll(ctx context.Context, sess *domain.Session, r period.Resolved, employeeID string) ([]domain.PayrollRow, error) {
	rows, err := s.gateway.ListPayroll(ctx, sess.Token, r, employeeID)
	if err != nil {
		s.logger.Error("failed to fetch payroll",
			zap.String("period", r.String()),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		s.metrics.IncrUpstreamError("payroll")
		return nil, fmt.Errorf("payroll fetch: %w", err)
	}
	if rows == nil {
		rows = []domain.PayrollRow{}
	}
	return rows, nil
}
