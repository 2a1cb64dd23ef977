package auth

import "time"

// Role determines what a user may do in the marketplace
type Role string

const (
	// RoleRenter can browse cars and place bookings
	RoleRenter Role = "renter"
	// RoleOwner can additionally list cars and manage bookings for them
	RoleOwner Role = "owner"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleRenter || r == RoleOwner
}

// User is an identity record. SecretHash is the bcrypt hash of the login
// secret; the plaintext secret is never stored or logged.
type User struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	SecretHash string    `json:"-" db:"secret_hash"`
	Role       Role      `json:"role" db:"role"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Capabilities is the permission set derived once from a verified role.
// Handlers and the client check these booleans instead of comparing role
// strings at every call site.
type Capabilities struct {
	IsOwner bool `json:"is_owner"`
}

// Capabilities derives the permission set from the user's role
func (u *User) Capabilities() Capabilities {
	return Capabilities{IsOwner: u.Role == RoleOwner}
}

// Sanitized returns a copy of the user with secret material stripped.
// This is the form attached to request contexts and returned by the API.
func (u *User) Sanitized() *User {
	clone := *u
	clone.SecretHash = ""
	return &clone
}
