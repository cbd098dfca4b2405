package domain

import "time"

// Identity is the resolved caller behind a bearer token.
type Identity struct {
	UserID string
	Role   Role
}

// Token represents issued access token metadata.
type Token struct {
	Value     string
	UserID    string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
