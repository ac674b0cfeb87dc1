package validation

import (
	"errors"
	"strings"
	"testing"
)

func fieldErr(t *testing.T, err error) *Error {
	t.Helper()
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	return ve
}

func TestPhoneInput(t *testing.T) {
	cases := []struct {
		name      string
		in        PhoneInput
		wantField string
		wantMsg   string
	}{
		{"ok", PhoneInput{CountryCode: "+1", PhoneNumber: "5551234567"}, "", ""},
		{"no country", PhoneInput{PhoneNumber: "5551234567"}, "countryCode", "Country code is required"},
		{"short", PhoneInput{CountryCode: "+1", PhoneNumber: "555"}, "phoneNumber", "Phone number must be at least 10 digits"},
		{"long", PhoneInput{CountryCode: "+1", PhoneNumber: strings.Repeat("5", 16)}, "phoneNumber", "Phone number too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			err := Struct(&in)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			ve := fieldErr(t, err)
			if ve.Field != tc.wantField || ve.Message != tc.wantMsg {
				t.Fatalf("got %+v", ve)
			}
		})
	}
}

func TestPhoneInput_Full(t *testing.T) {
	in := PhoneInput{CountryCode: " +91 ", PhoneNumber: " 9876543210 "}
	if err := Struct(&in); err != nil {
		t.Fatalf("Struct: %v", err)
	}
	if got := in.Full(); got != "+919876543210" {
		t.Fatalf("Full() = %q", got)
	}
}

func TestOTPInput(t *testing.T) {
	ok := OTPInput{Phone: "+15551234567", OTP: "123456"}
	if err := Struct(&ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	short := OTPInput{Phone: "+1", OTP: "123"}
	if ve := fieldErr(t, Struct(&short)); ve.Message != "OTP must be 6 digits" {
		t.Fatalf("short: %+v", ve)
	}

	letters := OTPInput{Phone: "+1", OTP: "12a456"}
	if ve := fieldErr(t, Struct(&letters)); ve.Message != "OTP must contain only numbers" {
		t.Fatalf("letters: %+v", ve)
	}

	signed := OTPInput{Phone: "+1", OTP: "-12345"}
	if ve := fieldErr(t, Struct(&signed)); ve.Field != "otp" {
		t.Fatalf("signed: %+v", ve)
	}

	noPhone := OTPInput{OTP: "123456"}
	if ve := fieldErr(t, Struct(&noPhone)); ve.Field != "phone" {
		t.Fatalf("no phone: %+v", ve)
	}
}

func TestChatroomInput(t *testing.T) {
	blank := ChatroomInput{Title: "   "}
	if ve := fieldErr(t, Struct(&blank)); ve.Message != "Title is required" {
		t.Fatalf("blank: %+v", ve)
	}

	long := ChatroomInput{Title: strings.Repeat("é", 51)}
	if ve := fieldErr(t, Struct(&long)); ve.Message != "Title too long" {
		t.Fatalf("long: %+v", ve)
	}

	edge := ChatroomInput{Title: strings.Repeat("é", 50)}
	if err := Struct(&edge); err != nil {
		t.Fatalf("50 runes should pass: %v", err)
	}

	trimmed := ChatroomInput{Title: "  Demo "}
	if err := Struct(&trimmed); err != nil || trimmed.Title != "Demo" {
		t.Fatalf("trim: %q %v", trimmed.Title, err)
	}
}

func TestMessageInput(t *testing.T) {
	empty := MessageInput{Content: " \n "}
	if ve := fieldErr(t, Struct(&empty)); ve.Message != "Message cannot be empty" {
		t.Fatalf("empty: %+v", ve)
	}

	long := MessageInput{Content: strings.Repeat("x", 1001)}
	if ve := fieldErr(t, Struct(&long)); ve.Message != "Message too long" {
		t.Fatalf("long: %+v", ve)
	}

	blankImg := "  "
	withBlankImage := MessageInput{Content: "hi", Image: &blankImg}
	if err := Struct(&withBlankImage); err != nil || withBlankImage.Image != nil {
		t.Fatalf("blank image should be dropped: %v %v", withBlankImage.Image, err)
	}
}

func TestError_String(t *testing.T) {
	e := &Error{Field: "title", Message: "Title too long"}
	if e.Error() != "title: Title too long" {
		t.Fatalf("Error() = %q", e.Error())
	}
}
