/**
 * @description
 * This file defines the resolved identity attached to a request after the
 * session credential has been verified by the identity provider. The identity
 * is transient: it lives in the request context only and is never persisted
 * directly (the user controller upserts a User record from it on login sync).
 */

package domain

// Identity is the verified subject resolved from a session cookie or bearer
// token. SubjectID is the identity provider's stable user id and is the owner
// key for every entity in the system.
type Identity struct {
	SubjectID string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}
