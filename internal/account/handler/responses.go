package handler

import (
	"time"

	"matchport/internal/account"
)

// AccountResponse is the public view of an account. The password hash and
// vetting note never leave the service.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	IsVetted  bool      `json:"is_vetted"`
	CreatedAt time.Time `json:"created_at"`
}

func FromAccount(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID.String(),
		Email:     a.Email,
		Username:  a.Username,
		Role:      string(a.Role),
		Phone:     a.Phone,
		IsVetted:  a.IsVetted,
		CreatedAt: a.CreatedAt,
	}
}

// LoginResponse is the body of a successful POST /auth/login.
type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	Account     *AccountResponse `json:"account"`
}
