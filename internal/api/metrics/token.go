package metrics

import (
	"errors"

	"github.com/articlehub/content-service/internal/core/domain"
)

// ObserveToken records one validation of a token of type typ.
func ObserveToken(typ domain.TokenType, err error) {
	TokenValidationsTotal.WithLabelValues(string(typ), tokenResult(err)).Inc()
}

func tokenResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrTokenWrongType):
		return "wrong_type"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_subject"
	default:
		return "error"
	}
}
