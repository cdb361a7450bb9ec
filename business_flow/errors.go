// Package businessflow contains the core business logic for short link resolution and click analytics
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Short link errors
	ErrShortLinkNotFound = errors.New("short link not found")
	ErrShortLinkExpired  = errors.New("short link expired")
	ErrInvalidPassword   = errors.New("invalid password")

	// Filter errors
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsShortLinkNotFound(err error) bool {
	return errors.Is(err, ErrShortLinkNotFound)
}

func IsShortLinkExpired(err error) bool {
	return errors.Is(err, ErrShortLinkExpired)
}

func IsInvalidPassword(err error) bool {
	return errors.Is(err, ErrInvalidPassword)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
