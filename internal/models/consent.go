package models

import "time"

// SignedAtLayout is the timestamp format used for the consent signature.
const SignedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// ConsentRecord is the participant's e-signed consent.
type ConsentRecord struct {
	FullName      string    `json:"fullName"`
	SignedAt      time.Time `json:"signedAt"`
	TypingConsent bool      `json:"typingConsent"`
	PhqGadConsent bool      `json:"phqGadConsent"`
}

// Complete reports whether both consents are given and a name was typed.
func (c ConsentRecord) Complete() bool {
	return c.TypingConsent && c.PhqGadConsent && hasText(c.FullName)
}

// SignedAtString formats the signature time, or "" when unsigned.
func (c ConsentRecord) SignedAtString() string {
	if c.SignedAt.IsZero() {
		return ""
	}
	return c.SignedAt.UTC().Format(SignedAtLayout)
}
