package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of a user. Roles live in the database and are
// checked server-side on every privileged request.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// User is an account with its delivery profile. PasswordHash is empty for
// federated-only accounts.
type User struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	GoogleID         string    `json:"-" db:"google_id"`
	Name             string    `json:"name" db:"name"`
	Phone            string    `json:"phone" db:"phone"`
	City             string    `json:"city" db:"city"`
	AddressLine1     string    `json:"addressLine1" db:"address_line1"`
	AddressLine2     string    `json:"addressLine2" db:"address_line2"`
	Landmark         string    `json:"landmark" db:"landmark"`
	Pincode          string    `json:"pincode" db:"pincode"`
	AvatarURL        string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	ProfileCompleted bool      `json:"profileCompleted" db:"profile_completed"`
	Role             Role      `json:"role" db:"role"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// ProfileInput is the payload for updating the delivery profile.
type ProfileInput struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	Landmark     string `json:"landmark"`
	Pincode      string `json:"pincode"`
	AvatarURL    string `json:"avatarUrl"`
}

// Complete reports whether the profile carries everything an order needs:
// a recipient, a phone number and a deliverable address.
func (p *ProfileInput) Complete() bool {
	return p.Name != "" && p.Phone != "" && p.City != "" && p.AddressLine1 != "" && p.Pincode != ""
}

// Session is an authenticated login, identified by an opaque token.
type Session struct {
	Token     string    `json:"-" db:"token"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// PasswordResetToken is a single-use credential for resetting a password.
type PasswordResetToken struct {
	Token     string    `db:"token"`
	UserID    uuid.UUID `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
}
