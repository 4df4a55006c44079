package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Actor is the authenticated caller as supplied by the session
// collaborator. The workflow core trusts these flags as given and does
// not re-derive them.
type Actor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsApproverA1 bool   `json:"is_approver_a1"`
	IsApproverA2 bool   `json:"is_approver_a2"`
	IsBuyer      bool   `json:"is_buyer"`
}

// actorClaims is the JWT claim set carrying the actor.
type actorClaims struct {
	Name         string `json:"name"`
	IsApproverA1 bool   `json:"is_approver_a1"`
	IsApproverA2 bool   `json:"is_approver_a2"`
	IsBuyer      bool   `json:"is_buyer"`
	jwt.RegisteredClaims
}

// TokenValidator validates bearer tokens issued by the session
// collaborator and extracts the actor they carry.
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator creates a validator for HMAC-signed tokens.
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// ValidateToken parses and verifies a token, returning its actor.
func (v *TokenValidator) ValidateToken(tokenString string) (*Actor, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	claims := &actorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &Actor{
		ID:           claims.Subject,
		Name:         claims.Name,
		IsApproverA1: claims.IsApproverA1,
		IsApproverA2: claims.IsApproverA2,
		IsBuyer:      claims.IsBuyer,
	}, nil
}
