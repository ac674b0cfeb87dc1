package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, not on
// the message text.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Auth flow.
	ErrCodeInvalidOTP = "invalid_otp"
	ErrCodeOTPFailed  = "otp_failed"

	// Chatrooms and messages.
	ErrCodeSendConflict = "send_conflict"
)
