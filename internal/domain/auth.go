package domain

import "time"

// SessionToken describes an issued session token.
type SessionToken struct {
	ID        string
	Username  string
	Role      Role
	Value     string
	ExpiresAt time.Time
}
