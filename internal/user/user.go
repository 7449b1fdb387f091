package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrNotFound           = errors.New("user not found")
)

// Message returns the text shown to the user for err, or "" when err is not
// one of the account errors.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateUsername):
		return "ဤ Username နာမည်ရှိပြီးသား ဖြစ်နေပါသည်"
	case errors.Is(err, ErrInvalidCredentials):
		return "Username / Password မှားနေပါတယ်"
	case errors.Is(err, ErrMissingCredentials):
		return "Username / Password ထည့်ပါ"
	case errors.Is(err, ErrPasswordMismatch):
		return "Confirm Password မတူပါ"
	}

	return ""
}
