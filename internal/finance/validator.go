package finance

import (
	"github.com/boddenberg/erp-finance-bfa/internal/domain"
)

// Validate checks a draft against the rule for its operation kind.
//
// Every check runs, so all simultaneous violations come back in one pass, in
// this order: amount, source, destination, source/destination equality,
// category. Subcategory is never required.
func Validate(d domain.TransactionDraft) domain.ValidationResult {
	violations := []domain.Violation{}

	if !d.Amount.IsPositive() {
		violations = append(violations, domain.Violation{Field: domain.FieldAmount, Kind: domain.NonPositiveAmount})
	}

	if !d.OperationKind.Valid() {
		violations = append(violations, domain.Violation{Field: domain.FieldOperationKind, Kind: domain.UnknownOperationKind})
		return domain.ValidationResult{Violations: violations}
	}
	rule := MustRuleFor(d.OperationKind)

	src, hasSrc := d.Source()
	dst, hasDst := d.Destination()

	if rule.RequiresSource && !hasSrc {
		violations = append(violations, domain.Violation{Field: domain.FieldSourceAccountID, Kind: domain.MissingRequiredAccount})
	}
	if rule.RequiresDestination && !hasDst {
		violations = append(violations, domain.Violation{Field: domain.FieldDestinationAccountID, Kind: domain.MissingRequiredAccount})
	}
	// Only operations that mandate both sides move money between two accounts.
	if rule.RequiresSource && rule.RequiresDestination && hasSrc && hasDst && src == dst {
		violations = append(violations, domain.Violation{Field: domain.FieldDestinationAccountID, Kind: domain.SourceEqualsDestination})
	}
	if _, hasCategory := d.Category(); rule.RequiresCategory && !hasCategory {
		violations = append(violations, domain.Violation{Field: domain.FieldCategoryID, Kind: domain.MissingRequiredCategory})
	}

	return domain.ValidationResult{Violations: violations}
}

// AccountIndex resolves account ids to the accounts the caller can see.
type AccountIndex map[domain.AccountRef]domain.Account

// IndexAccounts builds an AccountIndex from an account list.
func IndexAccounts(accounts []domain.Account) AccountIndex {
	idx := make(AccountIndex, len(accounts))
	for _, a := range accounts {
		idx[a.ID] = a
	}
	return idx
}

// ValidateAccounts runs Validate and then re-checks every referenced account
// against the rule's allowed classes. It catches ids that never came from the
// filtered option lists: unknown ids, wrong classes, and accounts sent for a
// side the operation does not use.
func ValidateAccounts(d domain.TransactionDraft, idx AccountIndex) domain.ValidationResult {
	result := Validate(d)
	if !d.OperationKind.Valid() {
		return result
	}
	rule := MustRuleFor(d.OperationKind)

	if src, ok := d.Source(); ok {
		if v, bad := checkAccount(idx, src, domain.FieldSourceAccountID, rule.AllowsSource); bad {
			result.Violations = append(result.Violations, v)
		}
	}
	if dst, ok := d.Destination(); ok {
		if v, bad := checkAccount(idx, dst, domain.FieldDestinationAccountID, rule.AllowsDestination); bad {
			result.Violations = append(result.Violations, v)
		}
	}
	return result
}

func checkAccount(idx AccountIndex, ref domain.AccountRef, field domain.Field, allowed func(domain.AccountClass) bool) (domain.Violation, bool) {
	account, ok := idx[ref]
	if !ok {
		return domain.Violation{Field: field, Kind: domain.UnknownAccount}, true
	}
	if !allowed(account.Class) {
		return domain.Violation{Field: field, Kind: domain.DisallowedAccountClass}, true
	}
	return domain.Violation{}, false
}
