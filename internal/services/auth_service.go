// Package services – AuthService
//
// AuthService is the mock phone/OTP identity provider. Both calls wait a
// fixed delay before answering; only ValidCode verifies. A successful
// verification returns the session record the caller hands to
// store.ChatStore.SetUser.
package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/observability"
)

const (
	// DefaultOTPCode is the only code the mock accepts.
	DefaultOTPCode = "123456"
	// DefaultOTPDelay is the simulated network latency of both calls.
	DefaultOTPDelay = time.Second

	otpSentMessage    = "OTP sent successfully"
	otpInvalidMessage = "Invalid OTP"
	mockUserID        = "1"
)

// OTPResult is the answer to SendOTP.
type OTPResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyResult is the answer to VerifyOTP. User is set only on success and
// Message only on failure.
type VerifyResult struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// AuthService issues and verifies one-time passwords.
type AuthService struct {
	// Delay is applied before each answer. Zero answers immediately.
	Delay time.Duration
	// ValidCode is the accepted verification code.
	ValidCode string
}

// NewAuthService returns an AuthService with the default code and the given delay.
func NewAuthService(delay time.Duration) *AuthService {
	return &AuthService{Delay: delay, ValidCode: DefaultOTPCode}
}

// SendOTP pretends to text a code to phone.
func (s *AuthService) SendOTP(ctx context.Context, phone string) (OTPResult, error) {
	ctx, span := observability.Tracer("services/auth").Start(ctx, "SendOTP")
	defer span.End()

	if strings.TrimSpace(phone) == "" {
		span.SetStatus(codes.Error, ErrEmptyPhone.Error())
		return OTPResult{}, ErrEmptyPhone
	}
	if err := sleepCtx(ctx, s.Delay); err != nil {
		span.RecordError(err)
		return OTPResult{}, err
	}
	return OTPResult{Success: true, Message: otpSentMessage}, nil
}

// VerifyOTP checks code for phone. A wrong code is not an error: it yields
// Success=false and the user-facing message, and err is ErrInvalidOTP so
// callers can branch with errors.Is. Context cancellation is returned as is.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (VerifyResult, error) {
	ctx, span := observability.Tracer("services/auth").Start(ctx, "VerifyOTP",
		trace.WithAttributes(attribute.Int("otp.length", len(code))),
	)
	defer span.End()

	if strings.TrimSpace(phone) == "" {
		span.SetStatus(codes.Error, ErrEmptyPhone.Error())
		return VerifyResult{}, ErrEmptyPhone
	}
	if err := sleepCtx(ctx, s.Delay); err != nil {
		span.RecordError(err)
		return VerifyResult{}, err
	}

	valid := s.ValidCode
	if valid == "" {
		valid = DefaultOTPCode
	}
	if code != valid {
		span.SetAttributes(attribute.Bool("otp.valid", false))
		return VerifyResult{Success: false, Message: otpInvalidMessage}, ErrInvalidOTP
	}
	span.SetAttributes(attribute.Bool("otp.valid", true))
	return VerifyResult{
		Success: true,
		User:    &domain.User{ID: mockUserID, Phone: phone},
	}, nil
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
