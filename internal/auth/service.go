package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRegistration = errors.New("invalid registration")
)

type Service struct {
	repo   Repository
	tokens *TokenSource
}

func NewService(repo Repository, tokens *TokenSource) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a customer account with role "customer".
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Customer, error) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: first_name, last_name, email and password are required", ErrInvalidRegistration)
	}
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidRegistration)
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	c := &Customer{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         RoleCustomer,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Login verifies the password and issues a bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	c, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(c.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(Identity{CustomerID: c.ID, Email: c.Email, Role: c.Role})
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *Service) Delete(ctx context.Context, customerID int64) error {
	ok, err := s.repo.Delete(ctx, customerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
