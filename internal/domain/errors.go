package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request rejected before any mutation or generation call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRoutingFailure marks a run where no single action could be selected.
	ErrRoutingFailure = errors.New("routing failure")
	// ErrGenerationFailure marks a generation call that kept failing after retries.
	ErrGenerationFailure = errors.New("generation failure")
)

func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func RoutingFailure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRoutingFailure, fmt.Sprintf(format, args...))
}
