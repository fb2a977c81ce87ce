package domain

import "time"

// TokenType discriminates access tokens from refresh tokens on the wire.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

func (t TokenType) Valid() bool {
	return t == TokenAccess || t == TokenRefresh
}

// TokenPair is always issued whole: both tokens or neither.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
