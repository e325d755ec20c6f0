package domain

import "github.com/boddenberg/erp-finance-bfa/internal/period"

// PeriodSelection is a resolved period filter, as echoed back to the screens.
type PeriodSelection struct {
	PeriodType period.Type     `json:"periodType"`
	Month      string          `json:"month"`
	Period     period.Resolved `json:"period"`
	Days       int             `json:"days"`
}
