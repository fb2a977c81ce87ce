package domain

import (
	"errors"
	"fmt"
)

var ErrAuthenticationFailed = errors.New("incorrect username or password")
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// ErrTokenInvalid is the family of every token validation failure.
var ErrTokenInvalid = errors.New("could not validate credentials")

var (
	ErrTokenMalformed    = fmt.Errorf("%w: malformed token", ErrTokenInvalid)
	ErrTokenBadSignature = fmt.Errorf("%w: bad token signature", ErrTokenInvalid)
	ErrTokenExpired      = fmt.Errorf("%w: token expired", ErrTokenInvalid)
	ErrTokenWrongType    = fmt.Errorf("%w: wrong token type", ErrTokenInvalid)
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrArticleNotFound = errors.New("article not found")
var ErrUnknownRole = errors.New("unknown role")
var ErrInvalidInput = errors.New("invalid input")

// ErrTokenSubjectUnknown is returned when a well-formed token names a user
// that no longer exists or was deactivated.
var ErrTokenSubjectUnknown = fmt.Errorf("%w: %w", ErrTokenInvalid, ErrUserNotFound)

var ErrPermissionDenied = errors.New("forbidden")
var ErrSelfActionForbidden = errors.New("action not allowed on own account")
var ErrConflict = errors.New("target already in requested state")
