package auth

import "time"

type Customer struct {
	ID           int64     `json:"customer_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity is the authenticated caller, decoded once from the bearer
// token and passed by value to everything downstream.
type Identity struct {
	CustomerID int64
	Email      string
	Role       string
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// RegisterRequest payload de registro.
// swagger:model RegisterRequest
type RegisterRequest struct {
	FirstName string `json:"first_name" example:"Ana"`
	LastName  string `json:"last_name"  example:"Cruz"`
	Email     string `json:"email"      example:"ana@example.com"`
	Password  string `json:"password"   example:"s3cret"`
}

// LoginRequest payload de login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// TokenResponse is the login result.
// swagger:model TokenResponse
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}
