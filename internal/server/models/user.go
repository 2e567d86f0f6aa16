package models

import "time"

// User is an account row. Email is the unique, case-insensitive lookup key
// and the subject carried inside every token. Avatar and RefreshToken are
// nullable in the store; nil means absent.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	Avatar       *string   `json:"avatar,omitempty"`
	RefreshToken *string   `json:"-"`
	Confirmed    bool      `json:"confirmed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
