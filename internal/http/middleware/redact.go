package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// RedactOptions configures a Redactor.
//
// MaskHeaders lists extra header names whose values are replaced wholesale
// with "[REDACTED]". Matching is case-insensitive and adds to the built-in
// set (Authorization, Cookie, Set-Cookie, Idempotency-Key).
type RedactOptions struct {
	MaskHeaders []string
}

var (
	// otpParamRE matches otp=/code= pairs in query strings and "otp":"..."
	// members in JSON fragments.
	otpParamRE = regexp.MustCompile(`(?i)(\b(?:otp|code)=)[^&\s]*|("otp"\s*:\s*")[^"]*`)
	// Chatroom and message IDs are UUIDs; they are kept verbatim and shielded
	// from the phone pattern, which would match their last group.
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\+?\b(?:\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Redactor scrubs personal data from strings and headers before they are
// logged. Phone numbers are the main concern: they are the login identity.
type Redactor struct {
	masked map[string]struct{}
}

// NewRedactor builds a Redactor with the built-in header mask plus opts.
func NewRedactor(opts RedactOptions) *Redactor {
	r := &Redactor{masked: map[string]struct{}{
		"authorization":   {},
		"cookie":          {},
		"set-cookie":      {},
		"idempotency-key": {},
	}}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.masked[h] = struct{}{}
		}
	}
	return r
}

// String returns s with OTP codes, e-mail addresses and phone numbers
// replaced by typed placeholders. OTPs go first because a code is digits
// the phone pattern could otherwise partially match.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	s = otpParamRE.ReplaceAllString(s, "${1}${2}[REDACTED:otp]")

	var b strings.Builder
	prev := 0
	for _, loc := range uuidRE.FindAllStringIndex(s, -1) {
		b.WriteString(scrubPII(s[prev:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(scrubPII(s[prev:]))
	return b.String()
}

func scrubPII(s string) string {
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// Headers flattens h into a loggable map, masking configured headers and
// scrubbing the rest with String.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}
