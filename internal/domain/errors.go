package domain

import "errors"

var (
	// ErrProviderNotConfigured signals a provider missing its credential.
	ErrProviderNotConfigured = errors.New("provider not configured")
	// ErrProviderCall signals a search provider API failure.
	ErrProviderCall = errors.New("provider call failed")
	// ErrRoutingExhausted signals that every candidate including the paid fallback failed.
	ErrRoutingExhausted = errors.New("no search providers available")
	// ErrUnknownProvider signals a provider name outside the configured roster.
	ErrUnknownProvider = errors.New("unknown provider")
)
