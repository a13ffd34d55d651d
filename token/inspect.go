// Package token reads the claims of stored access tokens for display.
// Nothing here verifies signatures; the server remains the only authority
// on whether a token is valid.
package token

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Info holds the claims the Trekker API puts in its access tokens.
type Info struct {
	Subject   string
	UserID    string
	TokenType string
	JTI       string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the token expiry is before now. A token without exp never expires.
func (i *Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Inspect parses rawToken without verifying it.
func Inspect(rawToken string) (*Info, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("[token.Inspect] empty token")
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, errors.Wrap(err, "[token.Inspect] ParseUnverified")
	}

	info := &Info{
		UserID:    claimString(claims["user_id"]),
		TokenType: claimString(claims["token_type"]),
		JTI:       claimString(claims["jti"]),
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	return info, nil
}

func claimString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return fmt.Sprintf("%.0f", c)
	default:
		return fmt.Sprint(c)
	}
}
