package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Operation kinds & account classes
// ============================================================

// OperationKind is the business operation a finance transaction records.
type OperationKind string

const (
	OperationIncome          OperationKind = "INCOME"
	OperationExpense         OperationKind = "EXPENSE"
	OperationTransfer        OperationKind = "TRANSFER"
	OperationSupplierInvoice OperationKind = "SUPPLIER_INVOICE"
	OperationPaymentToSupp   OperationKind = "PAYMENT_TO_SUPP"
	OperationDealerInvoice   OperationKind = "DEALER_INVOICE"
	OperationPaymentFromDlr  OperationKind = "PAYMENT_FROM_DLR"
	OperationSalaryPayout    OperationKind = "SALARY_PAYOUT"
	OperationOwnerWithdraw   OperationKind = "OWNER_WITHDRAW"
)

// OperationKinds lists every operation kind in display order.
var OperationKinds = []OperationKind{
	OperationIncome,
	OperationExpense,
	OperationTransfer,
	OperationSupplierInvoice,
	OperationPaymentToSupp,
	OperationDealerInvoice,
	OperationPaymentFromDlr,
	OperationSalaryPayout,
	OperationOwnerWithdraw,
}

// Valid reports whether k is one of the known operation kinds.
func (k OperationKind) Valid() bool {
	for _, known := range OperationKinds {
		if k == known {
			return true
		}
	}
	return false
}

// AccountClass classifies the role a financial account plays.
type AccountClass string

const (
	AccountCashbox  AccountClass = "CASHBOX"
	AccountBank     AccountClass = "BANK"
	AccountSupplier AccountClass = "SUPPLIER"
	AccountDealer   AccountClass = "DEALER"
	AccountEmployee AccountClass = "EMPLOYEE"
	AccountOwner    AccountClass = "OWNER"
)

// AccountClasses lists every account class.
var AccountClasses = []AccountClass{
	AccountCashbox, AccountBank, AccountSupplier, AccountDealer, AccountEmployee, AccountOwner,
}

// Valid reports whether c is one of the known account classes.
func (c AccountClass) Valid() bool {
	for _, known := range AccountClasses {
		if c == known {
			return true
		}
	}
	return false
}

// AccountRef identifies a financial account on the ERP.
type AccountRef string

// CategoryRef identifies a transaction category on the ERP.
type CategoryRef string

// ============================================================
// Accounts & categories (as served by the ERP)
// ============================================================

// Account is a financial account: a cashbox, a bank account or a counterparty ledger.
type Account struct {
	ID       AccountRef      `json:"id"`
	Name     string          `json:"name"`
	Class    AccountClass    `json:"type"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Archived bool            `json:"archived"`
}

// Category is an income/expense category. Subcategories carry a ParentID.
type Category struct {
	ID       CategoryRef  `json:"id"`
	Name     string       `json:"name"`
	ParentID *CategoryRef `json:"parentId,omitempty"`
}

// ============================================================
// Transactions
// ============================================================

// TransactionDraft is the transaction being edited in the creation dialog.
// A nil optional field, or one pointing at an empty string, is absent.
type TransactionDraft struct {
	Amount               decimal.Decimal `json:"amount"`
	OperationKind        OperationKind   `json:"operationKind"`
	SourceAccountID      *AccountRef     `json:"sourceAccountId,omitempty"`
	DestinationAccountID *AccountRef     `json:"destinationAccountId,omitempty"`
	CategoryID           *CategoryRef    `json:"categoryId,omitempty"`
	SubcategoryID        *CategoryRef    `json:"subcategoryId,omitempty"`
	Description          *string         `json:"description,omitempty"`
	OccurredAt           time.Time       `json:"occurredAt"`
}

// Source returns the source account id and whether it is present.
func (d TransactionDraft) Source() (AccountRef, bool) { return accountRef(d.SourceAccountID) }

// Destination returns the destination account id and whether it is present.
func (d TransactionDraft) Destination() (AccountRef, bool) {
	return accountRef(d.DestinationAccountID)
}

// Category returns the category id and whether it is present.
func (d TransactionDraft) Category() (CategoryRef, bool) {
	if d.CategoryID == nil || *d.CategoryID == "" {
		return "", false
	}
	return *d.CategoryID, true
}

func accountRef(ref *AccountRef) (AccountRef, bool) {
	if ref == nil || *ref == "" {
		return "", false
	}
	return *ref, true
}

// Transaction is the authoritative record the ERP keeps for a submitted draft.
type Transaction struct {
	ID                   string          `json:"id"`
	Amount               decimal.Decimal `json:"amount"`
	OperationKind        OperationKind   `json:"operationKind"`
	SourceAccountID      *AccountRef     `json:"sourceAccountId,omitempty"`
	DestinationAccountID *AccountRef     `json:"destinationAccountId,omitempty"`
	CategoryID           *CategoryRef    `json:"categoryId,omitempty"`
	SubcategoryID        *CategoryRef    `json:"subcategoryId,omitempty"`
	Description          string          `json:"description,omitempty"`
	OccurredAt           time.Time       `json:"occurredAt"`
	CreatedBy            string          `json:"createdBy,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// TransactionFilter narrows the transaction history beyond its date range.
type TransactionFilter struct {
	OperationKind OperationKind
	AccountID     AccountRef
}
