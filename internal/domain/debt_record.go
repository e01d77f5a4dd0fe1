package domain

import (
	"time"

	"github.com/google/uuid"
)

// Debt directions.
const (
	DebtLent     = "lent"
	DebtBorrowed = "borrowed"
)

// Debt statuses.
const (
	DebtPending = "pending"
	DebtPaid    = "paid"
	DebtOverdue = "overdue"
)

// DebtRecord tracks money lent to or borrowed from a counterparty.
type DebtRecord struct {
	ID           uuid.UUID  `json:"id"`
	UserID       string     `json:"userId"`
	ContactName  string     `json:"contactName"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	ContactPhone string     `json:"contactPhone,omitempty"`
	Amount       float64    `json:"amount"`
	Direction    string     `json:"direction"`
	Description  string     `json:"description,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Status       string     `json:"status"`
	AmountPaid   float64    `json:"amountPaid"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// DebtRecordInput is the DTO for debt record create and update requests.
type DebtRecordInput struct {
	ContactName  *string    `json:"contactName"`
	ContactEmail *string    `json:"contactEmail"`
	ContactPhone *string    `json:"contactPhone"`
	Amount       *float64   `json:"amount"`
	Direction    *string    `json:"direction"`
	Description  *string    `json:"description"`
	StartDate    *time.Time `json:"startDate"`
	DueDate      *time.Time `json:"dueDate"`
	Status       *string    `json:"status"`
	AmountPaid   *float64   `json:"amountPaid"`
	Notes        *string    `json:"notes"`
}

// ValidDebtDirection reports whether d is a member of the direction enum.
func ValidDebtDirection(d string) bool {
	return d == DebtLent || d == DebtBorrowed
}

// ValidDebtStatus reports whether s is a member of the debt status enum.
func ValidDebtStatus(s string) bool {
	switch s {
	case DebtPending, DebtPaid, DebtOverdue:
		return true
	}
	return false
}
