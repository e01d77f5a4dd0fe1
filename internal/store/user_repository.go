/**
 * @description
 * PostgreSQL implementation of UserRepository. Users are keyed by the identity
 * provider's subject id; a unique constraint on that column makes the login
 * sync idempotent. Sync is one INSERT ... ON CONFLICT DO UPDATE so repeated
 * logins never race their way into duplicate rows.
 *
 * Preference blocks live in JSONB columns; pgx marshals the settings structs
 * in and out transparently.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackr/finance-api/internal/domain"
)

// PostgresUserRepository is the pgx-backed UserRepository.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a new instance of PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `
	id, subject_id, email, COALESCE(name, '') AS name,
	COALESCE(avatar_url, '') AS avatar_url, COALESCE(phone_number, '') AS phone_number,
	COALESCE(first_name, '') AS first_name, COALESCE(last_name, '') AS last_name,
	currency, locale, timezone, provider, role, account_status,
	notifications, security, privacy, last_login, last_active, login_count,
	deleted, deleted_at, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.SubjectID, &u.Email, &u.Name, &u.AvatarURL, &u.PhoneNumber,
		&u.FirstName, &u.LastName, &u.Currency, &u.Locale, &u.Timezone,
		&u.Provider, &u.Role, &u.AccountStatus, &u.Notifications, &u.Security,
		&u.Privacy, &u.LastLogin, &u.LastActive, &u.LoginCount,
		&u.Deleted, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindBySubjectID retrieves the active user for a subject id. Soft-deleted and
// deactivated rows are misses.
func (r *PostgresUserRepository) FindBySubjectID(ctx context.Context, subjectID string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE subject_id = $1 AND deleted = FALSE AND account_status = 'active'
	`
	u, err := scanUser(r.db.QueryRow(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Sync creates the user on first login or refreshes the mutable profile
// fields from the latest claims, bumping the login counters either way.
// The created flag is derived from the post-upsert login count.
func (r *PostgresUserRepository) Sync(ctx context.Context, identity domain.Identity, req domain.SyncRequest) (*domain.User, bool, error) {
	email := req.Email
	if identity.Email != "" {
		email = identity.Email
	}
	name := req.Name
	if identity.Name != "" {
		name = identity.Name
	}
	avatar := req.AvatarURL
	if identity.AvatarURL != "" {
		avatar = identity.AvatarURL
	}

	query := `
		INSERT INTO users (
			id, subject_id, email, name, avatar_url, phone_number, provider,
			currency, locale, timezone, role, account_status,
			notifications, security, privacy,
			last_login, last_active, login_count
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, 'google',
			'INR', 'en-IN', 'Asia/Kolkata', 'user', 'active',
			$7, $8, $9,
			NOW(), NOW(), 1
		)
		ON CONFLICT (subject_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE users.name END,
			avatar_url = CASE WHEN EXCLUDED.avatar_url <> '' THEN EXCLUDED.avatar_url ELSE users.avatar_url END,
			phone_number = CASE WHEN EXCLUDED.phone_number <> '' THEN EXCLUDED.phone_number ELSE users.phone_number END,
			last_login = NOW(),
			last_active = NOW(),
			login_count = users.login_count + 1,
			updated_at = NOW()
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query,
		uuid.New(),
		identity.SubjectID,
		email,
		name,
		avatar,
		req.PhoneNumber,
		domain.DefaultNotificationSettings(),
		domain.SecuritySettings{},
		domain.DefaultPrivacySettings(),
	))
	if err != nil {
		return nil, false, err
	}
	return u, u.LoginCount == 1, nil
}

// UpdateProfile performs a partial update of the allow-listed profile fields
// for the active user.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, subjectID string, patch domain.UserProfileUpdate) (*domain.User, error) {
	query := `
		UPDATE users
		SET
			name = COALESCE($2, name),
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			phone_number = COALESCE($5, phone_number),
			currency = COALESCE($6, currency),
			locale = COALESCE($7, locale),
			timezone = COALESCE($8, timezone),
			updated_at = NOW()
		WHERE subject_id = $1 AND deleted = FALSE
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query,
		subjectID,
		patch.Name,
		patch.FirstName,
		patch.LastName,
		patch.PhoneNumber,
		patch.Currency,
		patch.Locale,
		patch.Timezone,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateNotifications replaces the notification preference block.
func (r *PostgresUserRepository) UpdateNotifications(ctx context.Context, subjectID string, settings domain.NotificationSettings) (*domain.User, error) {
	return r.updateSettings(ctx, subjectID, "notifications", settings)
}

// UpdateSecurity replaces the security settings block.
func (r *PostgresUserRepository) UpdateSecurity(ctx context.Context, subjectID string, settings domain.SecuritySettings) (*domain.User, error) {
	return r.updateSettings(ctx, subjectID, "security", settings)
}

func (r *PostgresUserRepository) updateSettings(ctx context.Context, subjectID string, column string, value interface{}) (*domain.User, error) {
	// column is one of the fixed jsonb column names, never caller input.
	query := `
		UPDATE users
		SET ` + column + ` = $2, updated_at = NOW()
		WHERE subject_id = $1 AND deleted = FALSE
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, subjectID, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// SoftDelete flags the user as deleted and deactivates the account. The row
// stays behind but every active-user query excludes it.
func (r *PostgresUserRepository) SoftDelete(ctx context.Context, subjectID string) error {
	query := `
		UPDATE users
		SET deleted = TRUE, deleted_at = NOW(), account_status = 'deactivated', updated_at = NOW()
		WHERE subject_id = $1 AND deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query, subjectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
