package auth

import "errors"

// Login failures. Messages go to the client verbatim, so unknown-email and
// bad-password stay distinguishable in the UI while both map to 401.
var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
)
