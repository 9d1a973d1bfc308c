// Package auth issues and verifies the bearer tokens used by the storefront,
// and hashes the 4-digit login PINs.
package auth

import (
	"errors"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ganzorig/mishil/config"
)

// TokenTTL is the bearer token lifetime. Customers stay signed in for a
// month; admins re-authenticate on the same schedule.
const TokenTTL = 30 * 24 * time.Hour

// Claims holds the typed JWT payload. The token embeds only the user id;
// role is loaded from the store on every request so role changes take
// effect without re-issuing tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

var pinRE = regexp.MustCompile(`^\d{4}$`)

// ErrInvalidPIN is returned when a password is not a 4-digit numeric PIN.
var ErrInvalidPIN = errors.New("auth: password must be a 4-digit PIN")

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken creates a signed JWT for the given user id.
func GenerateToken(userID string) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses and validates a JWT string.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// HashPIN returns a bcrypt hash of the 4-digit PIN.
// The small keyspace is why the signin route is rate limited.
func HashPIN(pin string) (string, error) {
	if !pinRE.MatchString(pin) {
		return "", ErrInvalidPIN
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPIN compares a bcrypt hash against the plain-text candidate.
func CheckPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
