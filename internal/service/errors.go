package service

import "errors"

var (
	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// so a caller cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTokenNotFound means logout targeted a refresh token the store never
	// had (or already lost): a state inconsistency, not a soft no-op.
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrRefreshInvalid means the refresh token is unknown to the store or
	// fails cryptographic verification.
	ErrRefreshInvalid = errors.New("refresh token invalid")

	ErrUsernameTaken = errors.New("username already exists")

	// ErrRoleNotSeeded is a configuration failure: the default registration
	// role is missing from the store.
	ErrRoleNotSeeded = errors.New("default role not seeded")
)
