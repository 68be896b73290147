package domain

import "time"

// User is the account a session belongs to. The framework only needs enough
// of the user to authenticate; application services own the rest of the
// profile.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
