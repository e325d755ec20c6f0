package erp

import (
	"context"
	"net/http"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/period"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GetAttendance fetches attendance rows for a period, optionally for one employee.
func (c *Client) GetAttendance(ctx context.Context, token string, p period.Resolved, employeeID string) ([]domain.AttendanceRow, error) {
	ctx, span := tracer.Start(ctx, "ERP.GetAttendance")
	defer span.End()
	span.SetAttributes(attribute.String("period", p.String()), attribute.String("employee.id", employeeID))

	q := periodQuery(p)
	if employeeID != "" {
		q.Set("employeeId", employeeID)
	}

	var rows []domain.AttendanceRow
	err := c.call(ctx, "attendance", func() error {
		rows = nil
		return c.do(ctx, request{
			op: "attendance", method: http.MethodGet, path: "/hr/attendance", token: token,
			query: q, resource: "attendance", id: employeeID,
		}, &rows)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rows, nil
}

// ListPayroll fetches payroll rows for a period, optionally for one employee.
func (c *Client) ListPayroll(ctx context.Context, token string, p period.Resolved, employeeID string) ([]domain.PayrollRow, error) {
	ctx, span := tracer.Start(ctx, "ERP.ListPayroll")
	defer span.End()
	span.SetAttributes(attribute.String("period", p.String()), attribute.String("employee.id", employeeID))

	q := periodQuery(p)
	if employeeID != "" {
		q.Set("employeeId", employeeID)
	}

	var rows []domain.PayrollRow
	err := c.call(ctx, "payroll", func() error {
		rows = nil
		return c.do(ctx, request{
			op: "payroll", method: http.MethodGet, path: "/hr/payroll", token: token,
			query: q, resource: "payroll", id: employeeID,
		}, &rows)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rows, nil
}
