package model

import "time"

// User represents registered account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal is the authenticated caller extracted from a token.
type Principal struct {
	UserID int64
	Role   Role
}

// Capabilities returns the lifecycle actions available to the principal.
func (p Principal) Capabilities() Capabilities {
	return CapabilitiesFor(p.Role)
}
