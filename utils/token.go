package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// PeekClaims decodes a token's claims without verifying the signature. The
// client never holds the signing secret; it only inspects its own bearer
// token to log identity and to skip network work with a credential that is
// already expired locally.
func PeekClaims(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// TokenExpired reports whether the token carries an exp claim in the past.
// A malformed token counts as expired; a token without exp does not, since
// the backend stays authoritative and will reject it if needed.
func TokenExpired(tokenString string, now time.Time) bool {
	claims, err := PeekClaims(tokenString)
	if err != nil {
		return true
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return now.After(time.Unix(int64(exp), 0))
}

// TokenSubject extracts the sub claim, or "" when absent.
func TokenSubject(tokenString string) string {
	claims, err := PeekClaims(tokenString)
	if err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
