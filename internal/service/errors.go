package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordNotSet     = errors.New("account has no password")
	ErrPasswordAlreadySet = errors.New("account already has a password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrSelfDelete         = errors.New("cannot delete own account")
)

// InputError is a request that passed binding but failed a semantic check.
// Message is shown to the client.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }
