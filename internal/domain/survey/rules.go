package survey

import (
	"fmt"
	"strings"
)

// ValidateVisit checks the fields the store requires before any write.
// Everything else on a visit is optional survey data.
func ValidateVisit(v Visit) error {
	if strings.TrimSpace(v.TourID) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrTourIDRequired)
	}
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNameRequired)
	}
	if strings.TrimSpace(v.Status) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrStatusRequired)
	}
	return nil
}

// ValidateCredentials guards the login call.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmailRequired)
	}
	if password == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrPasswordRequired)
	}
	return nil
}

// ValidatePasswordChange guards the reset-password call. Failures here never
// reach the network.
func ValidatePasswordChange(current, next, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrPasswordRequired)
	}
	if next != confirm {
		return fmt.Errorf("%w: %w", ErrValidation, ErrPasswordMismatch)
	}
	if len(next) < 8 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrPasswordTooShort)
	}
	return nil
}
