// Package validation checks user input before it reaches the store or the
// auth collaborator. Rules and messages mirror what the phone, OTP, chatroom
// and message forms show next to the offending field.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error describes the first rule an input broke.
type Error struct {
	// Field is the JSON name of the offending field.
	Field string `json:"field"`
	// Message is safe to show to the user.
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Field + ": " + e.Message }

// PhoneInput is the phone entry form.
type PhoneInput struct {
	CountryCode string `json:"countryCode" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"min=10,max=15"`
}

// Full returns the number in the form used for OTP calls.
func (p PhoneInput) Full() string { return p.CountryCode + p.PhoneNumber }

// OTPInput is the verification form.
type OTPInput struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp" validate:"len=6,number"`
}

// ChatroomInput is the new-chatroom form.
type ChatroomInput struct {
	Title string `json:"title" validate:"required,max=50"`
}

// MessageInput is the composer. Image is an optional data URL or link.
type MessageInput struct {
	Content string  `json:"content" validate:"required,max=1000"`
	Image   *string `json:"image,omitempty"`
}

// messages maps "<field>.<tag>" to the user-facing text.
var messages = map[string]string{
	"countryCode.required": "Country code is required",
	"phoneNumber.min":      "Phone number must be at least 10 digits",
	"phoneNumber.max":      "Phone number too long",
	"phone.required":       "Phone number is required",
	"otp.len":              "OTP must be 6 digits",
	"otp.number":           "OTP must contain only numbers",
	"title.required":       "Title is required",
	"title.max":            "Title too long",
	"content.required":     "Message cannot be empty",
	"content.max":          "Message too long",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct trims string fields of the known inputs in place and validates
// them. It returns nil or an *Error for the first failing field.
func Struct(in any) error {
	normalize(in)
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = "is invalid"
	}
	return &Error{Field: fe.Field(), Message: msg}
}

func normalize(in any) {
	switch v := in.(type) {
	case *PhoneInput:
		v.CountryCode = strings.TrimSpace(v.CountryCode)
		v.PhoneNumber = strings.TrimSpace(v.PhoneNumber)
	case *OTPInput:
		v.Phone = strings.TrimSpace(v.Phone)
		v.OTP = strings.TrimSpace(v.OTP)
	case *ChatroomInput:
		v.Title = strings.TrimSpace(v.Title)
	case *MessageInput:
		v.Content = strings.TrimSpace(v.Content)
		if v.Image != nil && strings.TrimSpace(*v.Image) == "" {
			v.Image = nil
		}
	}
}
