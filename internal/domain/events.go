package domain

import "time"

// Event routing keys published to the user events exchange.
const (
	EventUserCreated = "user.created"
	EventUserSynced  = "user.synced"
)

// UserEvent is published after a successful login sync so downstream
// consumers (mailers, analytics) learn about new and returning users.
type UserEvent struct {
	UserID     string    `json:"user_id"`
	SubjectID  string    `json:"subject_id"`
	Email      string    `json:"email"`
	LoginCount int       `json:"login_count"`
	OccurredAt time.Time `json:"occurred_at"`
}
