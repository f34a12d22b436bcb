// Package auth implements the stateless session credentials: bcrypt
// password digests and signed HS256 session tokens carried in a cookie.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the session token payload: the user id as subject plus the
// role at issuance time.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssueToken signs a session token for userID valid for ttl from now.
func IssueToken(userID, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	})
	return token.SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the claims.
// Any failure collapses to ErrInvalidToken; callers do not distinguish
// expired from forged tokens.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
