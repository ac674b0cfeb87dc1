// Auth and session HTTP handlers.
//
//   - POST /auth/otp          (request a code)
//   - POST /auth/verify       (verify a code and sign in)
//   - POST /auth/logout       (sign out, dropping chatrooms and history)
//   - GET  /session           (current user and preferences)
//   - PUT  /preferences/theme (dark mode)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/http/middleware"
	"github.com/tbourn/go-chat-store/internal/services"
	"github.com/tbourn/go-chat-store/internal/validation"
)

// SessionResponse mirrors the session part of the store state.
type SessionResponse struct {
	User              *domain.User `json:"user"`
	IsAuthenticated   bool         `json:"isAuthenticated"`
	DarkMode          bool         `json:"darkMode"`
	IsLoading         bool         `json:"isLoading"`
	CurrentChatroomID *string      `json:"currentChatroomId"`
	PendingReplies    int          `json:"pendingReplies"`
}

// ThemeRequest toggles dark mode.
type ThemeRequest struct {
	DarkMode *bool `json:"darkMode" binding:"required" example:"true"`
}

func (h *Handlers) session() SessionResponse {
	st := h.store.Session()
	return SessionResponse{
		User:              st.User,
		IsAuthenticated:   st.IsAuthenticated,
		DarkMode:          st.DarkMode,
		IsLoading:         st.IsLoading,
		CurrentChatroomID: st.CurrentChatroomID,
		PendingReplies:    st.PendingReplies,
	}
}

// SendOTP godoc
// @ID          sendOTP
// @Summary     Request a one-time password
// @Description Validates the phone form and asks the OTP provider to send a code. The store's loading flag is raised while the provider answers.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      validation.PhoneInput  true  "Country code and phone number"
// @Success     200   {object}  services.OTPResult
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     422   {object}  handlers.ErrorResponse  "Invalid phone"
// @Failure     429   {object}  handlers.ErrorResponse  "Too many OTP requests"
// @Failure     500   {object}  handlers.ErrorResponse  "Provider failure"
// @Router      /auth/otp [post]
func (h *Handlers) SendOTP(c *gin.Context) {
	var in validation.PhoneInput
	if !bind(c, &in) {
		return
	}

	h.store.SetLoading(true)
	res, err := h.auth.SendOTP(c.Request.Context(), in.Full())
	h.store.SetLoading(false)
	if err != nil {
		if errors.Is(err, services.ErrEmptyPhone) {
			writeError(c, http.StatusUnprocessableEntity, ErrorResponse{Code: ErrCodeValidation, Message: "Phone number is required", Field: "phoneNumber"})
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeOTPFailed, "could not send OTP")
		return
	}
	middleware.LoggerFrom(c).Info().Str("country_code", in.CountryCode).Msg("otp sent")
	ok(c, http.StatusOK, res)
}

// VerifyOTP godoc
// @ID          verifyOTP
// @Summary     Verify a one-time password
// @Description Checks the code and, on success, signs the user in and returns the session.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      validation.OTPInput  true  "Phone and 6-digit code"
// @Success     200   {object}  handlers.SessionResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     401   {object}  handlers.ErrorResponse  "Wrong code"
// @Failure     422   {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     500   {object}  handlers.ErrorResponse  "Provider failure"
// @Router      /auth/verify [post]
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var in validation.OTPInput
	if !bind(c, &in) {
		return
	}

	h.store.SetLoading(true)
	res, err := h.auth.VerifyOTP(c.Request.Context(), in.Phone, in.OTP)
	h.store.SetLoading(false)
	switch {
	case errors.Is(err, services.ErrInvalidOTP):
		msg := res.Message
		if msg == "" {
			msg = "Invalid OTP"
		}
		fail(c, http.StatusUnauthorized, ErrCodeInvalidOTP, msg)
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeOTPFailed, "could not verify OTP")
		return
	case !res.Success || res.User == nil:
		fail(c, http.StatusUnauthorized, ErrCodeInvalidOTP, "Invalid OTP")
		return
	}

	h.store.SetUser(res.User)
	middleware.LoggerFrom(c).Info().Str("user_id", res.User.ID).Msg("signed in")
	ok(c, http.StatusOK, h.session())
}

// Logout godoc
// @ID          logout
// @Summary     Sign out
// @Description Clears the user, chatrooms, history and selection and cancels pending AI replies. Dark mode is kept.
// @Tags        Auth
// @Success     204  "Signed out"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	h.store.Logout()
	noContent(c)
}

// GetSession godoc
// @ID          getSession
// @Summary     Current session
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.SessionResponse
// @Router      /session [get]
func (h *Handlers) GetSession(c *gin.Context) {
	ok(c, http.StatusOK, h.session())
}

// SetTheme godoc
// @ID          setTheme
// @Summary     Toggle dark mode
// @Description Dark mode survives logout.
// @Tags        Preferences
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ThemeRequest  true  "Theme"
// @Success     200   {object}  handlers.SessionResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Router      /preferences/theme [put]
func (h *Handlers) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "darkMode is required")
		return
	}
	h.store.SetDarkMode(*req.DarkMode)
	ok(c, http.StatusOK, h.session())
}
