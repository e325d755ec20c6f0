package finance

import (
	"github.com/boddenberg/erp-finance-bfa/internal/domain"
)

// OperationOptions is what the creation form may offer for one operation kind.
type OperationOptions struct {
	Rule                OperationRule     `json:"rule"`
	SourceAccounts      []domain.Account  `json:"sourceAccounts"`
	DestinationAccounts []domain.Account  `json:"destinationAccounts"`
	Categories          []domain.Category `json:"categories"`
	Subcategories       []domain.Category `json:"subcategories"`
}

// Options filters accounts by the rule's allowed classes and, for operations
// that require a category, splits categories into top level and subcategories.
// Archived accounts are never offered.
func Options(kind domain.OperationKind, accounts []domain.Account, categories []domain.Category) (OperationOptions, error) {
	rule, err := RuleFor(kind)
	if err != nil {
		return OperationOptions{}, err
	}

	opts := OperationOptions{
		Rule:                rule,
		SourceAccounts:      []domain.Account{},
		DestinationAccounts: []domain.Account{},
		Categories:          []domain.Category{},
		Subcategories:       []domain.Category{},
	}
	for _, a := range accounts {
		if a.Archived {
			continue
		}
		if rule.AllowsSource(a.Class) {
			opts.SourceAccounts = append(opts.SourceAccounts, a)
		}
		if rule.AllowsDestination(a.Class) {
			opts.DestinationAccounts = append(opts.DestinationAccounts, a)
		}
	}

	if !rule.RequiresCategory {
		return opts, nil
	}
	for _, c := range categories {
		if c.ParentID == nil || *c.ParentID == "" {
			opts.Categories = append(opts.Categories, c)
		} else {
			opts.Subcategories = append(opts.Subcategories, c)
		}
	}
	return opts, nil
}
