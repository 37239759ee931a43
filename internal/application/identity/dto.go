package identity

import (
	"time"

	"github.com/google/uuid"
)

// SignupInput contains the data needed to register an account
type SignupInput struct {
	Email        string
	Password     string
	BusinessName string
}

// LoginInput contains the data needed to authenticate
type LoginInput struct {
	Email    string
	Password string
}

// RefreshTokenInput contains the refresh token to exchange
type RefreshTokenInput struct {
	RefreshToken string
}

// UpdateProfileInput contains profile fields the owner may change
type UpdateProfileInput struct {
	BusinessName string
}

// UserInfo is the account view returned to the authenticated owner
type UserInfo struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	BusinessName string    `json:"business_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthResult carries tokens plus the account view after signup or login
type AuthResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}
