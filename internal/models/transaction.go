package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType distinguishes money coming in from money going out.
// Amounts are always positive magnitudes, the type carries the sign.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// RecurrenceKind is the cadence of a recurring transaction series.
type RecurrenceKind string

const (
	RecurrenceNone       RecurrenceKind = "none"
	RecurrenceMonthly    RecurrenceKind = "monthly"
	RecurrenceQuarterly  RecurrenceKind = "quarterly"
	RecurrenceSemiannual RecurrenceKind = "semiannual"
	RecurrenceYearly     RecurrenceKind = "yearly"
)

// Transaction represents a single income or expense entry.
type Transaction struct {
	DefaultModel
	Name              string
	Amount            decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Date              time.Time       // Time of day is currently only used for sorting
	Type              TransactionType
	CategoryID        *uuid.UUID
	Category          *Category `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	AccountID         *uuid.UUID
	Account           *Account `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Recurrence        RecurrenceKind
	RecurrenceGroupID uuid.UUID // uuid.Nil for transactions that are not part of a series
	Installment       bool
}

// IsRecurring reports whether the transaction belongs to a recurring series.
//
// Both conditions are required: a transaction with recurrence kind "none"
// is never part of a series, even if its group id happens to be set.
func (t Transaction) IsRecurring() bool {
	return t.Recurrence != RecurrenceNone && t.RecurrenceGroupID != uuid.Nil
}

// AfterFind enforces dates to be in UTC.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return
}

// BeforeSave
//   - sets the timezone for the Date to UTC
//   - verifies that the amount is a positive magnitude
//   - defaults the type to expense and the recurrence kind to none
//   - trims whitespace from string fields
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Name = strings.TrimSpace(t.Name)

	if !t.Amount.IsPositive() {
		return ErrTransactionAmountNotPositive
	}

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	if t.Type == "" {
		t.Type = Expense
	}
	if t.Type != Income && t.Type != Expense {
		return ErrTransactionTypeInvalid
	}

	switch t.Recurrence {
	case "":
		t.Recurrence = RecurrenceNone
	case RecurrenceNone, RecurrenceMonthly, RecurrenceQuarterly, RecurrenceSemiannual, RecurrenceYearly:
	default:
		return ErrRecurrenceInvalid
	}

	// Ensure that optional references are nil and not pointers to a nil UUID
	if t.CategoryID != nil && *t.CategoryID == uuid.Nil {
		t.CategoryID = nil
	}
	if t.AccountID != nil && *t.AccountID == uuid.Nil {
		t.AccountID = nil
	}

	return nil
}
