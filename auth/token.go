package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pcerrors "github.com/SuyashBhavalkar3/posturecoach/errors"
)

const tokenIssuer = "posturecoach"

// TokenIssuer signs and verifies HS256 bearer tokens carrying the user id
// as subject.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration

	// now is replaceable for expiry tests.
	now func() time.Time
}

// NewTokenIssuer creates an issuer with the given signing secret and
// token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, pcerrors.WrapInvalid(pcerrors.ErrMissingConfig, "auth", "NewTokenIssuer", "resolve signing secret")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token for the user.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := t.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", pcerrors.WrapFatal(err, "auth", "Issue", "sign token")
	}
	return signed, nil
}

// Verify parses a token and returns the user id it was issued for.
// Any parse, signature or expiry failure reports ErrTokenInvalid.
func (t *TokenIssuer) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", pcerrors.ErrTokenInvalid
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(tok *jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", pcerrors.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", pcerrors.ErrTokenInvalid
	}
	return claims.Subject, nil
}
