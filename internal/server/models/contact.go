package models

import "time"

// Contact belongs to exactly one user; UserID is the owner scope every
// repository query is predicated on.
type Contact struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"date_of_birth"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
