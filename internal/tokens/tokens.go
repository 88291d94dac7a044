// Package tokens mints and verifies the signed JWT pair that backs a
// session: a short-lived access token and a long-lived refresh token, each
// carrying its own random jti. Revocation state lives elsewhere; this
// package only deals with the self-contained credential.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims is the payload of both token kinds. Subject is the account email,
// Type distinguishes access from refresh, ID is the jti.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func NewJTI() string { return uuid.NewString() }

// Sign mints a token of the given type with a fresh jti, expiring at
// issued_at + ttl. The returned claims mirror what was signed so the caller
// can register the jti without re-parsing the token.
func Sign(email, typ string, ttl time.Duration, secret []byte) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        NewJTI(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse validates signature and expiry and checks that the token is of the
// expected type. Expiry is reported as ErrTokenExpired; every other
// verification failure collapses into ErrTokenMalformed.
func Parse(raw, typ string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !tkn.Valid || claims.Type != typ || claims.ID == "" {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}
