package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

type farmClaims struct {
	jwt.RegisteredClaims
	FarmID uint     `json:"farm_id"`
	Perms  []string `json:"perms"`
}

// Tokens signs and verifies farm tokens with a shared HMAC secret.
type Tokens struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokens returns a signer/verifier for the secret.
func NewTokens(secret, issuer string) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for the actor valid for ttl.
func (t *Tokens) Issue(a Actor, ttl time.Duration) (string, error) {
	now := t.now()
	claims := farmClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatUint(uint64(a.FarmID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		FarmID: a.FarmID,
		Perms:  a.Codenames(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the actor it carries.
func (t *Tokens) Verify(raw string) (Actor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Actor{}, ErrInvalidToken
	}

	var claims farmClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.FarmID == 0 {
		return Actor{}, fmt.Errorf("%w: missing farm_id", ErrInvalidToken)
	}
	if claims.Subject != "" && claims.Subject != strconv.FormatUint(uint64(claims.FarmID), 10) {
		return Actor{}, fmt.Errorf("%w: subject does not match farm_id", ErrInvalidToken)
	}
	return NewActor(claims.FarmID, claims.Perms...), nil
}
