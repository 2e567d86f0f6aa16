// Package auth implements the token codec and the credential verifier:
// signed, expiring, purpose-tagged JWTs and bcrypt password digests.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkravets/contactdesk/internal/common"
)

// Purpose tags a token so one kind cannot be replayed as another.
type Purpose string

const (
	PurposeAccess        Purpose = "access_token"
	PurposeRefresh       Purpose = "refresh_token"
	PurposeVerifyEmail   Purpose = "email_token"
	PurposeResetPassword Purpose = "password_reset_token"
)

// Claims carries the registered claim set plus the purpose tag. Subject is
// the user's email.
type Claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"purpose"`
}

// IssueToken produces a signed HS256 token for subject with
// issued-at = now and expiry = now + ttl.
func IssueToken(subject string, purpose Purpose, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	})

	return token.SignedString(secretKey)
}

// DecodeToken verifies signature and expiry, checks the purpose tag and
// returns the subject. Failures map to common.ErrTokenExpired,
// common.ErrWrongTokenPurpose or common.ErrInvalidToken.
func DecodeToken(tokenString string, expected Purpose, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.Purpose != expected {
		return "", common.ErrWrongTokenPurpose
	}

	return claims.Subject, nil
}
