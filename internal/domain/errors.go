package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidKey    = errors.New("odds api key invalid or expired")
	ErrQuotaExceeded = errors.New("odds api quota exceeded")
	ErrNoAPIKey      = errors.New("no odds api key configured")
	ErrContextDone   = errors.New("context cancelled")
)
