package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type tokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenSource signs and verifies HS256 bearer tokens. The secret comes
// from the startup config, never from the environment here.
type TokenSource struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenSource(secret string, ttl time.Duration) *TokenSource {
	return &TokenSource{secret: []byte(secret), ttl: ttl}
}

func (ts *TokenSource) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: id.CustomerID,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}

func (ts *TokenSource) Verify(token string) (Identity, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return ts.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Role == "" || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{CustomerID: claims.UserID, Email: claims.Subject, Role: claims.Role}, nil
}
