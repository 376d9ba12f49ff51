package transport

import (
	"time"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

type RegisterRequest struct {
	Name     string  `json:"name"     validate:"required,min=2,max=120"`
	Email    string  `json:"email"    validate:"required,email,max=254"`
	Phone    *string `json:"phone"    validate:"omitempty,e164"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

// VerifyRequest confirms a verification code. Identifier may be a phone
// number when the code was sent by SMS; it defaults to Email.
type VerifyRequest struct {
	Email      string `json:"email"      validate:"omitempty,email"`
	Identifier string `json:"identifier" validate:"omitempty,max=254"`
	Code       string `json:"code"       validate:"required,len=6,numeric"`
}

type OTPRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Purpose    string `json:"purpose"    validate:"required,oneof=verify reset"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Code     string `json:"code"     validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type TokenResponse struct {
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	TokenType        string       `json:"token_type"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	User             *models.User `json:"user,omitempty"`
}

type Address struct {
	Line1      string `json:"line1"       validate:"required,max=200"`
	Line2      string `json:"line2"       validate:"max=200"`
	City       string `json:"city"        validate:"required,max=100"`
	State      string `json:"state"       validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
}

type UpdateProfileRequest struct {
	Name    *string  `json:"name"    validate:"omitempty,min=2,max=120"`
	Phone   *string  `json:"phone"   validate:"omitempty,e164"`
	Address *Address `json:"address" validate:"omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
