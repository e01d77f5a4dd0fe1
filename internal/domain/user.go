/**
 * @description
 * This file defines the User entity and its preference blocks. Users are keyed
 * by the identity provider's subject id (unique) and are soft-deleted: the
 * deleted flag plus timestamp keep the row but exclude it from every
 * active-user lookup.
 *
 * @notes
 * - The preference blocks (notifications, security, privacy) are stored as
 *   JSONB documents; they are opaque to the query layer.
 * - Role and permissions are carried for forward compatibility; ownership
 *   scoping is the only authorization rule the data layer enforces.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account statuses.
const (
	AccountActive      = "active"
	AccountDeactivated = "deactivated"
	AccountSuspended   = "suspended"
)

// User is the persisted profile + preferences record for one subject id.
type User struct {
	ID            uuid.UUID            `json:"id"`
	SubjectID     string               `json:"-"`
	Email         string               `json:"email"`
	Name          string               `json:"name"`
	AvatarURL     string               `json:"avatarUrl"`
	PhoneNumber   string               `json:"phoneNumber"`
	FirstName     string               `json:"firstName"`
	LastName      string               `json:"lastName"`
	Currency      string               `json:"currency"`
	Locale        string               `json:"locale"`
	Timezone      string               `json:"timezone"`
	Provider      string               `json:"provider"`
	Role          string               `json:"role"`
	AccountStatus string               `json:"accountStatus"`
	Notifications NotificationSettings `json:"notifications"`
	Security      SecuritySettings     `json:"security,omitempty"`
	Privacy       PrivacySettings      `json:"privacy"`
	LastLogin     *time.Time           `json:"lastLogin,omitempty"`
	LastActive    *time.Time           `json:"lastActive,omitempty"`
	LoginCount    int                  `json:"loginCount"`
	Deleted       bool                 `json:"-"`
	DeletedAt     *time.Time           `json:"-"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// NotificationSettings groups per-channel notification toggles.
type NotificationSettings struct {
	Email EmailNotifications `json:"email"`
	Push  PushNotifications  `json:"push"`
	SMS   SMSNotifications   `json:"sms"`
}

type EmailNotifications struct {
	TransactionAlerts bool `json:"transactionAlerts"`
	WeeklyReports     bool `json:"weeklyReports"`
	MonthlySummaries  bool `json:"monthlySummaries"`
	BudgetAlerts      bool `json:"budgetAlerts"`
	SecurityAlerts    bool `json:"securityAlerts"`
	Marketing         bool `json:"marketing"`
}

type PushNotifications struct {
	TransactionAlerts bool `json:"transactionAlerts"`
	BudgetAlerts      bool `json:"budgetAlerts"`
	GoalReminders     bool `json:"goalReminders"`
}

type SMSNotifications struct {
	SecurityAlerts   bool `json:"securityAlerts"`
	ImportantUpdates bool `json:"importantUpdates"`
}

// SecuritySettings groups account security preferences.
type SecuritySettings struct {
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
	TwoFactorMethod  string `json:"twoFactorMethod,omitempty"`
}

// PrivacySettings groups data visibility preferences.
type PrivacySettings struct {
	ProfileVisibility  string      `json:"profileVisibility"`
	TransactionPrivacy string      `json:"transactionPrivacy"`
	DataSharing        DataSharing `json:"dataSharing"`
}

type DataSharing struct {
	Research   bool `json:"research"`
	Marketing  bool `json:"marketing"`
	ThirdParty bool `json:"thirdParty"`
}

// DefaultNotificationSettings returns the toggles applied to new users.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Email: EmailNotifications{
			TransactionAlerts: true,
			WeeklyReports:     true,
			MonthlySummaries:  true,
			BudgetAlerts:      true,
			SecurityAlerts:    true,
		},
		Push: PushNotifications{
			TransactionAlerts: true,
			BudgetAlerts:      true,
			GoalReminders:     true,
		},
		SMS: SMSNotifications{
			SecurityAlerts: true,
		},
	}
}

// DefaultPrivacySettings returns the visibility defaults applied to new users.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		ProfileVisibility:  "private",
		TransactionPrivacy: "private",
	}
}

// UserProfileUpdate carries the allow-listed mutable profile fields. Anything
// outside this set in a request body is ignored.
type UserProfileUpdate struct {
	Name        *string `json:"name"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
	Currency    *string `json:"currency"`
	Locale      *string `json:"locale"`
	Timezone    *string `json:"timezone"`
}

// SyncRequest is the body of the sync-on-login call; fields supplement the
// verified identity claims (claims win when both are present).
type SyncRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatarUrl"`
	PhoneNumber string `json:"phoneNumber"`
}
