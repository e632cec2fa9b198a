package survey

import "errors"

var (
	ErrTourIDRequired    = errors.New("tour id is required")
	ErrNameRequired      = errors.New("visit name is required")
	ErrStatusRequired    = errors.New("visit status is required")
	ErrNothingToSend     = errors.New("no unsynced visits for tour")
	ErrValidation        = errors.New("validation failed")
	ErrEmailRequired     = errors.New("email is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrPasswordMismatch  = errors.New("password confirmation does not match")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrNoConnectionCache = errors.New("no connection and no cached data")
)
