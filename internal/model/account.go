package model

import "time"

// Account represents a login-capable identity. Passwords are stored as bcrypt
// hashes and never serialized. An account may optionally be linked to passport
// data, in which case the passport fields are populated.
type Account struct {
	ID             int64     `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	FirstName      *string   `json:"first_name,omitempty" db:"first_name"`
	LastName       *string   `json:"last_name,omitempty" db:"last_name"`
	PassportSeries *int64    `json:"passport_series,omitempty" db:"passport_series"`
	PassportNumber *int64    `json:"passport_number,omitempty" db:"passport_number"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	IsStaff        bool      `json:"is_staff" db:"is_staff"`
	IsSuperuser    bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// AccountFilter narrows an account search. Zero-valued fields are not applied.
// Name fields match as case-insensitive substrings; passport fields match
// exactly.
type AccountFilter struct {
	FirstName      string
	LastName       string
	PassportSeries *int64
	PassportNumber *int64
}
