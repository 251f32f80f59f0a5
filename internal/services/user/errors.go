package user

import "errors"

// Domain errors for user service
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrNameTooLong        = errors.New("name cannot exceed 100 characters")
)

const (
	minPasswordLength = 8
	maxNameLength     = 100

	// DefaultHashCost is the bcrypt cost used for stored credentials
	DefaultHashCost = 12
)
