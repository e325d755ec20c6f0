package domain

import (
	"github.com/boddenberg/erp-finance-bfa/internal/period"

	"github.com/shopspring/decimal"
)

// ============================================================
// HR: attendance & payroll
// ============================================================

// AttendanceStatus marks what an employee did on a given day.
type AttendanceStatus string

const (
	AttendancePresent  AttendanceStatus = "present"
	AttendanceAbsent   AttendanceStatus = "absent"
	AttendanceSick     AttendanceStatus = "sick"
	AttendanceVacation AttendanceStatus = "vacation"
	AttendanceDayOff   AttendanceStatus = "day_off"
)

// AttendanceRow is one cell of the attendance grid.
type AttendanceRow struct {
	EmployeeID   string           `json:"employeeId"`
	EmployeeName string           `json:"employeeName"`
	Date         period.Date      `json:"date"`
	Status       AttendanceStatus `json:"status"`
	HoursWorked  decimal.Decimal  `json:"hoursWorked"`
}

// PayrollRow is the payroll calculation of one employee for a period.
type PayrollRow struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	DaysWorked   int             `json:"daysWorked"`
	BaseSalary   decimal.Decimal `json:"baseSalary"`
	Bonus        decimal.Decimal `json:"bonus"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetPay       decimal.Decimal `json:"netPay"`
}

// AttendanceGrid is returned by GET /v1/hr/attendance.
type AttendanceGrid struct {
	Period     period.Resolved `json:"period"`
	PeriodType period.Type     `json:"periodType"`
	Rows       []AttendanceRow `json:"rows"`
}

// PayrollSheet is returned by GET /v1/hr/payroll.
type PayrollSheet struct {
	Period     period.Resolved `json:"period"`
	PeriodType period.Type     `json:"periodType"`
	Rows       []PayrollRow    `json:"rows"`
	TotalNet   decimal.Decimal `json:"totalNet"`
}

// EmployeeSummary is the employee profile view for one period.
type EmployeeSummary struct {
	EmployeeID  string          `json:"employeeId"`
	Period      period.Resolved `json:"period"`
	PeriodType  period.Type     `json:"periodType"`
	DaysPresent int             `json:"daysPresent"`
	DaysAbsent  int             `json:"daysAbsent"`
	HoursWorked decimal.Decimal `json:"hoursWorked"`
	NetPay      decimal.Decimal `json:"netPay"`
	Attendance  []AttendanceRow `json:"attendance"`
	Payroll     []PayrollRow    `json:"payroll"`
}

// TransactionHistory is returned by GET /v1/finance/transactions.
type TransactionHistory struct {
	Period     period.Resolved `json:"period"`
	PeriodType period.Type     `json:"periodType"`
	Items      []Transaction   `json:"items"`
}
