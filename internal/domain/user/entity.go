package user

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the three account kinds of the barangay system.
const (
	RoleResident = "resident"
	RoleTanod    = "tanod"
	RoleAdmin    = "admin"
)

// Account status. New registrations start Pending until an admin verifies.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// User represents an account in the domain: residents reporting incidents,
// tanods on patrol, and admins running the dashboard.
type User struct {
	ID             uuid.UUID
	Username       string
	PasswordHashed string
	Role           string
	Status         string
	FullName       string
	Email          string
	Address        *string
	ImageKey       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVerified reports whether the account passed admin verification.
func (u *User) IsVerified() bool {
	return u.Status == StatusVerified
}

// RefreshToken is a stored, revocable refresh token for a user session.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
