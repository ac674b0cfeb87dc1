package middleware

import (
	"net/http"
	"strings"
	"testing"
)

func TestRedactor_String(t *testing.T) {
	r := NewRedactor(RedactOptions{})

	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"e164 phone", "phone=+15551234567", "phone=[REDACTED:phone]"},
		{"dashed phone", "call 555-123-4567 now", "call [REDACTED:phone] now"},
		{"email", "to=a.b+tag@example.com", "to=[REDACTED:email]"},
		{"otp query", "otp=123456&page=2", "otp=[REDACTED:otp]&page=2"},
		{"code query", "CODE=999999", "CODE=[REDACTED:otp]"},
		{"otp json", `{"phone":"x","otp":"123456"}`, `{"phone":"x","otp":"[REDACTED:otp]"}`},
		{"chatroom id untouched", "id=123e4567-e89b-12d3-a456-426614174000", "id=123e4567-e89b-12d3-a456-426614174000"},
		{"pagination untouched", "page=3&page_size=20", "page=3&page_size=20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.String(tc.in); got != tc.want {
				t.Fatalf("String(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRedactor_Headers(t *testing.T) {
	r := NewRedactor(RedactOptions{MaskHeaders: []string{" X-Api-Key ", ""}})

	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", "sid=1")
	h.Set("Idempotency-Key", "k-1")
	h.Set("X-Api-Key", "shhh")
	h.Add("X-Note", "reach me at 555-123-4567")
	h.Add("X-Note", "or a@b.io")
	h.Set("Accept", "application/json")

	got := r.Headers(h)
	for _, k := range []string{"Authorization", "Cookie", "Idempotency-Key", "X-Api-Key"} {
		if got[k] != "[REDACTED]" {
			t.Fatalf("%s = %q; want masked", k, got[k])
		}
	}
	if got["X-Note"] != "reach me at [REDACTED:phone], or [REDACTED:email]" {
		t.Fatalf("X-Note = %q", got["X-Note"])
	}
	if got["Accept"] != "application/json" {
		t.Fatalf("Accept altered: %q", got["Accept"])
	}
	if strings.Contains(strings.Join(mapValues(got), " "), "secret") {
		t.Fatalf("secret leaked: %v", got)
	}
}

func mapValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
