// Package auth validates runner bearer tokens for the tracker API.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds signer verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// runnerToken is the JWT body issued to runners. The subject is the runner ID.
type runnerToken struct {
	jwt.RegisteredClaims
	Scopes scopeList `json:"scopes"`
}

// scopeList accepts either a JSON array or an OAuth style space separated string.
type scopeList []string

func (s *scopeList) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*s = strings.Fields(joined)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("scopes: %w", err)
	}
	*s = list
	return nil
}

// Parse validates an HS256 runner token and returns its claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	var body runnerToken
	_, err := jwt.ParseWithClaims(token, &body, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if body.Subject == "" {
		return nil, fmt.Errorf("%w: no runner subject", ErrInvalidToken)
	}

	claims := &Claims{RunnerID: body.Subject, Scopes: make(map[string]struct{}, len(body.Scopes))}
	for _, scope := range body.Scopes {
		if scope != "" {
			claims.Scopes[scope] = struct{}{}
		}
	}
	if body.ExpiresAt != nil {
		claims.ExpiresAt = body.ExpiresAt.Time
	}
	return claims, nil
}
