package model

import "time"

// User represents an account row in the `users` table.  Roles are
// plain strings matching the JWT role claim: "user", "host" or
// "admin".  The core trusts the role claim verbatim; it is promoted
// to "host" when a first application is submitted or onboarding
// completes.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique)
	PasswordHash string    // users.password_hash (bcrypt)
	FullName     string    // users.full_name
	Role         string    // users.role (user|host|admin)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

const (
	RoleUser  = "user"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

// RefreshToken models a row in `refresh_tokens`.  Only the SHA-256
// hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
