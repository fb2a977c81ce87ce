// Package auth holds the credential verifier and the token codec.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/articlehub/content-service/internal/core/domain"
)

// Clock supplies the current time. Tests replace it to move through token
// lifetimes.
type Clock func() time.Time

// Claims is the signed token payload.
type Claims struct {
	jwt.RegisteredClaims
	Type domain.TokenType `json:"typ"`
}

// TokenCodec issues and parses signed, time-bounded tokens.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    Clock
}

// NewTokenCodec builds a codec for an HMAC algorithm name (HS256, HS384,
// HS512). A nil clock uses time.Now.
func NewTokenCodec(secret, algorithm string, now Clock) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token codec: empty secret")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token codec: unsupported algorithm %q", algorithm)
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: []byte(secret), method: method, now: now}, nil
}

// Issue signs a token of the given type for subject, valid for ttl from now.
// The issue time is truncated to whole seconds, the resolution of the wire
// format, so exp-iat equals ttl.
func (c *TokenCodec) Issue(subject string, typ domain.TokenType, ttl time.Duration) (string, time.Time, error) {
	if subject == "" || !typ.Valid() || ttl <= 0 {
		return "", time.Time{}, domain.ErrInvalidInput
	}
	now := c.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Type: typ,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, expiry and type of token. The signature is
// verified before any claim is inspected.
func (c *TokenCodec) Parse(token string, expected domain.TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || !claims.Type.Valid() {
		return nil, domain.ErrTokenMalformed
	}
	if claims.Type != expected {
		return nil, domain.ErrTokenWrongType
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return domain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
