// Package finance holds the operation rule table that drives the transaction
// creation form, and the validator that decides whether a draft can be submitted.
//
// Per-operation behaviour is data: one OperationRule per OperationKind. Nothing
// here performs I/O.
package finance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
)

var (
	// ErrUnknownOperation is returned for a kind outside the closed OperationKind set.
	ErrUnknownOperation = errors.New("unknown operation kind")

	// ErrRuleNotFound means a known kind has no rule. The table is checked at
	// start-up, so this is unreachable in a running process.
	ErrRuleNotFound = errors.New("no rule for operation kind")
)

// OperationRule describes which accounts and category an operation needs.
// A side that is not required allows no account class at all.
type OperationRule struct {
	Kind                      domain.OperationKind  `json:"operationKind"`
	RequiresSource            bool                  `json:"requiresSource"`
	RequiresDestination       bool                  `json:"requiresDestination"`
	RequiresCategory          bool                  `json:"requiresCategory"`
	AllowedSourceClasses      []domain.AccountClass `json:"allowedSourceClasses"`
	AllowedDestinationClasses []domain.AccountClass `json:"allowedDestinationClasses"`
	SourceLabel               string                `json:"sourceLabel,omitempty"`
	DestinationLabel          string                `json:"destinationLabel,omitempty"`
}

// AllowsSource reports whether an account of class c may be the source.
func (r OperationRule) AllowsSource(c domain.AccountClass) bool {
	return slices.Contains(r.AllowedSourceClasses, c)
}

// AllowsDestination reports whether an account of class c may be the destination.
func (r OperationRule) AllowsDestination(c domain.AccountClass) bool {
	return slices.Contains(r.AllowedDestinationClasses, c)
}

func (r OperationRule) clone() OperationRule {
	r.AllowedSourceClasses = slices.Clone(r.AllowedSourceClasses)
	r.AllowedDestinationClasses = slices.Clone(r.AllowedDestinationClasses)
	return r
}

var (
	moneyAccounts = []domain.AccountClass{domain.AccountCashbox, domain.AccountBank}
	none          = []domain.AccountClass{}
)

var rules = map[domain.OperationKind]OperationRule{
	domain.OperationIncome: {
		RequiresDestination:       true,
		RequiresCategory:          true,
		AllowedSourceClasses:      none,
		AllowedDestinationClasses: moneyAccounts,
		DestinationLabel:          "Credited to",
	},
	domain.OperationExpense: {
		RequiresSource:            true,
		RequiresCategory:          true,
		AllowedSourceClasses:      moneyAccounts,
		AllowedDestinationClasses: none,
		SourceLabel:               "Paid from",
	},
	domain.OperationTransfer: {
		RequiresSource:            true,
		RequiresDestination:       true,
		AllowedSourceClasses:      moneyAccounts,
		AllowedDestinationClasses: moneyAccounts,
		SourceLabel:               "From account",
		DestinationLabel:          "To account",
	},
	domain.OperationSupplierInvoice: {
		RequiresDestination:       true,
		AllowedSourceClasses:      none,
		AllowedDestinationClasses: []domain.AccountClass{domain.AccountSupplier},
		DestinationLabel:          "Supplier",
	},
	domain.OperationPaymentToSupp: {
		RequiresSource:            true,
		RequiresDestination:       true,
		AllowedSourceClasses:      moneyAccounts,
		AllowedDestinationClasses: []domain.AccountClass{domain.AccountSupplier},
		SourceLabel:               "Paid from",
		DestinationLabel:          "Supplier",
	},
	domain.OperationDealerInvoice: {
		RequiresSource:            true,
		AllowedSourceClasses:      []domain.AccountClass{domain.AccountDealer},
		AllowedDestinationClasses: none,
		SourceLabel:               "Dealer",
	},
	domain.OperationPaymentFromDlr: {
		RequiresSource:            true,
		RequiresDestination:       true,
		AllowedSourceClasses:      []domain.AccountClass{domain.AccountDealer},
		AllowedDestinationClasses: moneyAccounts,
		SourceLabel:               "Dealer",
		DestinationLabel:          "Credited to",
	},
	domain.OperationSalaryPayout: {
		RequiresSource:            true,
		RequiresDestination:       true,
		AllowedSourceClasses:      moneyAccounts,
		AllowedDestinationClasses: []domain.AccountClass{domain.AccountEmployee},
		SourceLabel:               "Paid from",
		DestinationLabel:          "Employee",
	},
	domain.OperationOwnerWithdraw: {
		RequiresSource:            true,
		RequiresDestination:       true,
		AllowedSourceClasses:      moneyAccounts,
		AllowedDestinationClasses: []domain.AccountClass{domain.AccountOwner},
		SourceLabel:               "Paid from",
		DestinationLabel:          "Owner",
	},
}

func init() {
	if err := checkTable(rules); err != nil {
		panic(err)
	}
}

// checkTable asserts total coverage of OperationKinds and that unrequired
// sides carry no allowed classes.
func checkTable(table map[domain.OperationKind]OperationRule) error {
	for _, kind := range domain.OperationKinds {
		rule, ok := table[kind]
		if !ok {
			return &domain.ErrConfiguration{Kind: kind, Err: ErrRuleNotFound}
		}
		if !rule.RequiresSource && len(rule.AllowedSourceClasses) > 0 {
			return &domain.ErrConfiguration{Kind: kind, Err: errors.New("source classes set on an unrequired source")}
		}
		if !rule.RequiresDestination && len(rule.AllowedDestinationClasses) > 0 {
			return &domain.ErrConfiguration{Kind: kind, Err: errors.New("destination classes set on an unrequired destination")}
		}
		if rule.RequiresSource && len(rule.AllowedSourceClasses) == 0 {
			return &domain.ErrConfiguration{Kind: kind, Err: errors.New("required source allows no account class")}
		}
		if rule.RequiresDestination && len(rule.AllowedDestinationClasses) == 0 {
			return &domain.ErrConfiguration{Kind: kind, Err: errors.New("required destination allows no account class")}
		}
	}
	if len(table) != len(domain.OperationKinds) {
		return fmt.Errorf("rule table has %d entries for %d operation kinds", len(table), len(domain.OperationKinds))
	}
	return nil
}

// RuleFor returns the rule for kind.
func RuleFor(kind domain.OperationKind) (OperationRule, error) {
	if !kind.Valid() {
		return OperationRule{}, fmt.Errorf("%w: %q", ErrUnknownOperation, kind)
	}
	rule, ok := rules[kind]
	if !ok {
		return OperationRule{}, &domain.ErrConfiguration{Kind: kind, Err: ErrRuleNotFound}
	}
	rule.Kind = kind
	return rule.clone(), nil
}

// MustRuleFor is RuleFor for kinds already known to be valid. It panics on a
// missing rule.
func MustRuleFor(kind domain.OperationKind) OperationRule {
	rule, err := RuleFor(kind)
	if err != nil {
		panic(err)
	}
	return rule
}

// Rules returns every rule in OperationKinds order.
func Rules() []OperationRule {
	out := make([]OperationRule, 0, len(domain.OperationKinds))
	for _, kind := range domain.OperationKinds {
		out = append(out, MustRuleFor(kind))
	}
	return out
}
