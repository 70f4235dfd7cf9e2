package auth

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is the only login failure text a client ever sees
const GenericFailureMessage = "Invalid credentials"

var (
	// ErrInvalidCredentials is returned by Gate.Login for any failed login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound means the username is not registered
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrInvalidCredentials)

	// ErrBadPassword means the password did not match
	ErrBadPassword = fmt.Errorf("%w: bad password", ErrInvalidCredentials)

	// ErrUnauthenticated is returned when a request carries no live session
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUserExists is returned when registering a username twice
	ErrUserExists = errors.New("user already exists")
)

// failureReason maps a credential error to the login_failed reason detail
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrBadPassword):
		return "bad_password"
	default:
		return "error"
	}
}
