// Package session consumes the authentication collaborator: it verifies
// provider-issued access tokens and reacts to session-changed events.
package session

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/yuzutyaso/chatsite/pkg/errors"
)

// Session is the authenticated caller. Email doubles as the short-id seed;
// it is empty for anonymous sign-ups.
type Session struct {
	UserID string
	Email  string
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 access token and extracts the session. Any
// verification failure maps to the one invalid-session error; callers get
// no oracle about why a token was bad.
func ParseToken(tokenString, secret string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidSession
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.ErrInvalidSession
	}

	c, ok := token.Claims.(*claims)
	if !ok || c.Subject == "" {
		return nil, errors.ErrInvalidSession
	}
	return &Session{UserID: c.Subject, Email: c.Email}, nil
}
