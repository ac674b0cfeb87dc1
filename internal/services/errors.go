// Package services implements the collaborators the chat store and the HTTP
// adapter depend on: OTP issuance and verification, the simulated AI
// responder, and the country dial-code directory.
//
// This file centralizes service-level error values so that callers can check
// them with errors.Is and handlers can map them to HTTP results.
package services

import "errors"

var (
	// ErrInvalidOTP is returned when the verification code does not match.
	ErrInvalidOTP = errors.New("invalid otp")

	// ErrEmptyPhone is returned when an OTP is requested or verified for an
	// empty phone number.
	ErrEmptyPhone = errors.New("phone number is empty")

	// ErrCountriesUnavailable wraps failures of the remote country directory.
	// The fallback list is still returned alongside it.
	ErrCountriesUnavailable = errors.New("country directory unavailable")
)
