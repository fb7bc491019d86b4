// README: Account identity model (admin and driver) and account module errors.
package account

import (
	"errors"
	"fmt"
	"time"

	"autometer/internal/types"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPhoneTaken         = fmt.Errorf("%w: phone number already registered", types.ErrConflict)
)

// Account is keyed by id; PhoneNumber is unique across all accounts.
type Account struct {
	ID           string    `json:"id"`
	PhoneNumber  string    `json:"phoneNumber"`
	Role         Role      `json:"userType"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate carries optional admin profile changes; nil fields are left as they are.
type ProfileUpdate struct {
	Name        *string
	PhoneNumber *string
	Password    *string
}

// Session is what a successful login returns.
type Session struct {
	Account   Account   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
