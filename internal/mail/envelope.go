// Package mail renders, composes and delivers the contact form emails.
package mail

import (
	"context"
	"regexp"
	"strings"
)

// Address is a mailbox with an optional display name
type Address struct {
	Name  string
	Email string
}

// Envelope describes one outgoing message
type Envelope struct {
	From    Address
	To      []Address
	ReplyTo []Address // optional
	Subject string
	Text    string
	HTML    string // optional
}

// Emails returns the bare, header-safe mailbox of every address
func Emails(list []Address) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, HeaderSafe(a.Email))
	}
	return out
}

// Sender delivers a single envelope
type Sender interface {
	Send(ctx context.Context, env Envelope) error
}

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// HeaderSafe collapses every run of CR/LF into a single space and trims the
// result, so the value can never start a new header line.
func HeaderSafe(s string) string {
	return strings.TrimSpace(lineBreaks.ReplaceAllString(s, " "))
}
