package domain

import "time"

// User is one registered identity, keyed by email. A pending verification
// code occupies VerificationCode/CodeExpiresAt between issuance and
// replacement; both are nil otherwise and are only ever written together.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	VerificationCode *string
	CodeExpiresAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPendingCode reports whether a code has been issued and not yet replaced.
// Expiry is checked at verification time, not here.
func (u *User) HasPendingCode() bool {
	return u.VerificationCode != nil && u.CodeExpiresAt != nil
}
