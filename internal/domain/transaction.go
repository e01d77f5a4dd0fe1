/**
 * @description
 * This file defines the Transaction entity and its request DTOs. A transaction
 * is the central record of the tracker: every aggregation endpoint is computed
 * over transactions scoped to their owning user.
 *
 * @notes
 * - Amounts are float64 by design; the service makes no financial-grade
 *   decimal guarantees.
 * - UserID holds the identity provider's subject id, not an internal UUID.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TransactionIncome   = "income"
	TransactionExpense  = "expense"
	TransactionTransfer = "transfer"
)

// Payment methods.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentBank   = "bank"
	PaymentWallet = "wallet"
	PaymentOther  = "other"
)

// Need/want tags for expense transactions.
const (
	NeedTag         = "need"
	WantTag         = "want"
	NeedWantNotAppl = "n/a"
)

// Recurring intervals.
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// Transaction represents a single financial record owned by a user.
// It maps directly to the `transactions` table.
type Transaction struct {
	ID                uuid.UUID  `json:"id"`
	UserID            string     `json:"userId"`
	Date              time.Time  `json:"date"`
	Type              string     `json:"type"`
	CategoryID        *uuid.UUID `json:"categoryId,omitempty"`
	Description       string     `json:"description"`
	Amount            float64    `json:"amount"`
	PaymentMethod     string     `json:"paymentMethod"`
	Recurring         bool       `json:"recurring"`
	RecurringInterval *string    `json:"recurringInterval,omitempty"`
	NeedOrWant        string     `json:"needOrWant"`
	Notes             string     `json:"notes"`
	RunningBalance    *float64   `json:"runningBalance,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// TransactionInput is the DTO for create and update requests. Pointer fields
// distinguish "absent" from zero values on partial updates.
type TransactionInput struct {
	Date              *time.Time `json:"date"`
	Type              *string    `json:"type"`
	CategoryID        *uuid.UUID `json:"categoryId"`
	Description       *string    `json:"description"`
	Amount            *float64   `json:"amount"`
	PaymentMethod     *string    `json:"paymentMethod"`
	Recurring         *bool      `json:"recurring"`
	RecurringInterval *string    `json:"recurringInterval"`
	NeedOrWant        *string    `json:"needOrWant"`
	Notes             *string    `json:"notes"`
	RunningBalance    *float64   `json:"runningBalance"`
}

// TransactionFilter narrows owner-scoped list queries. Zero values mean
// "no constraint".
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *uuid.UUID
	Type       string
	Recurring  *bool
}

// ValidTransactionType reports whether t is a member of the transaction type enum.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a member of the payment method enum.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBank, PaymentWallet, PaymentOther:
		return true
	}
	return false
}

// ValidNeedOrWant reports whether v is a member of the need/want enum.
func ValidNeedOrWant(v string) bool {
	switch v {
	case NeedTag, WantTag, NeedWantNotAppl:
		return true
	}
	return false
}

// ValidRecurringInterval reports whether v is a member of the interval enum.
func ValidRecurringInterval(v string) bool {
	switch v {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}
