package domain

import "errors"

var (
	// ErrNotFoundOrUnauthorized covers both a missing stack and a caller who is not
	// its curator, so callers cannot tell whether a stack they do not own exists.
	ErrNotFoundOrUnauthorized = errors.New("stack not found or not owned by caller")
	ErrReferentialFailure     = errors.New("referenced stack, tool or user does not exist")
	ErrStackNotFound          = errors.New("stack not found")
	ErrInvalidFilter          = errors.New("invalid list filter")
)
