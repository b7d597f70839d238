package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPostalCode signals a postal code that is not of the form 1234AB.
	ErrInvalidPostalCode = errors.New("invalid postal code")
	// ErrPostalCodeNotFound signals that the geocoder has no hit for a postal code.
	ErrPostalCodeNotFound = errors.New("postal code not found")
	// ErrGeocoderUnavailable signals a geocoder transport or upstream failure.
	ErrGeocoderUnavailable = errors.New("geocoder unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrProviderUnavailable signals that the school data source failed.
	ErrProviderUnavailable = errors.New("school provider unavailable")
)

// ProviderError wraps a data source failure with the provider name.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrProviderUnavailable.Error(), e.Provider, e.Err)
}

// Is reports ErrProviderUnavailable so callers can match the sentinel.
func (e *ProviderError) Is(target error) bool { return target == ErrProviderUnavailable }

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err as a provider failure.
func NewProviderError(provider string, err error) error {
	return &ProviderError{Provider: provider, Err: err}
}
