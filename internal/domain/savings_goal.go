package domain

import (
	"time"

	"github.com/google/uuid"
)

// Savings goal statuses.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalCancelled = "cancelled"
)

// Savings goal weight classes.
const (
	GoalMinor = "minor goal"
	GoalMajor = "major goal"
)

// SavingsGoal tracks progress toward a target amount. The status moves to
// "completed" only through the progress-update operation, at the moment
// currentAmount reaches targetAmount.
type SavingsGoal struct {
	ID            uuid.UUID  `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Category      string     `json:"category,omitempty"`
	GoalType      string     `json:"type"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SavingsGoalInput is the DTO for goal create and update requests.
type SavingsGoalInput struct {
	Name          *string    `json:"name"`
	TargetAmount  *float64   `json:"targetAmount"`
	CurrentAmount *float64   `json:"currentAmount"`
	Deadline      *time.Time `json:"deadline"`
	Category      *string    `json:"category"`
	GoalType      *string    `json:"type"`
	Status        *string    `json:"status"`
	Notes         *string    `json:"notes"`
}

// ValidGoalStatus reports whether s is a member of the goal status enum.
func ValidGoalStatus(s string) bool {
	switch s {
	case GoalActive, GoalCompleted, GoalCancelled:
		return true
	}
	return false
}

// ValidGoalType reports whether t is a member of the goal weight enum.
func ValidGoalType(t string) bool {
	return t == GoalMinor || t == GoalMajor
}
