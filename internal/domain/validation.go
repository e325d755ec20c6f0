package domain

// Field names a TransactionDraft field a violation is reported on.
type Field string

const (
	FieldAmount               Field = "amount"
	FieldOperationKind        Field = "operationKind"
	FieldSourceAccountID      Field = "sourceAccountId"
	FieldDestinationAccountID Field = "destinationAccountId"
	FieldCategoryID           Field = "categoryId"
)

// ViolationKind classifies why a field is invalid. Every kind is a user-input
// error: the draft becomes valid once the field is edited.
type ViolationKind string

const (
	NonPositiveAmount       ViolationKind = "NonPositiveAmount"
	MissingRequiredAccount  ViolationKind = "MissingRequiredAccount"
	MissingRequiredCategory ViolationKind = "MissingRequiredCategory"
	SourceEqualsDestination ViolationKind = "SourceEqualsDestination"
	UnknownOperationKind    ViolationKind = "UnknownOperationKind"
	UnknownAccount          ViolationKind = "UnknownAccount"
	DisallowedAccountClass  ViolationKind = "DisallowedAccountClass"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field Field         `json:"field"`
	Kind  ViolationKind `json:"kind"`
}

// ValidationResult is either valid (no violations) or an ordered list of violations.
type ValidationResult struct {
	Violations []Violation `json:"violations"`
}

// Valid reports whether the draft can be submitted.
func (r ValidationResult) Valid() bool { return len(r.Violations) == 0 }

// Has reports whether the result contains the given violation.
func (r ValidationResult) Has(field Field, kind ViolationKind) bool {
	for _, v := range r.Violations {
		if v.Field == field && v.Kind == kind {
			return true
		}
	}
	return false
}

// ValidationResponse is returned by POST /v1/finance/transactions/validate.
type ValidationResponse struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}
