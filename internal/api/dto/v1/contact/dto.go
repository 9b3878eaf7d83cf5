package contact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text is a form value. JSON strings decode as-is; null, false and zero
// decode as empty; any other JSON value decodes as its literal text.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")), bytes.Equal(trimmed, []byte("false")):
		*t = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		if f, err := strconv.ParseFloat(string(trimmed), 64); err == nil && f == 0 {
			*t = ""
			return nil
		}
		*t = Text(trimmed)
	}
	return nil
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    Text `json:"name" validate:"required,max=80"`
	Email   Text `json:"email" validate:"required,contactemail"`
	Message Text `json:"message" validate:"required,max=5000"`
	Company Text `json:"company" validate:"max=120"`
	Phone   Text `json:"phone" validate:"max=80"`
	Website Text `json:"website" validate:"max=200"`

	// Details is the field name used by the website form for Message
	Details Text `json:"details" validate:"-"`

	// HP is the honeypot field, left empty by real visitors
	HP Text `json:"hp" validate:"-"`
}

// Normalize trims every field and falls back to Details when Message is empty
func (r *ContactRequest) Normalize() {
	for _, f := range []*Text{&r.Name, &r.Email, &r.Message, &r.Company, &r.Phone, &r.Website, &r.Details} {
		*f = Text(strings.TrimSpace(string(*f)))
	}
	if r.Message == "" {
		r.Message = r.Details
	}
}

// IsBot reports whether the honeypot field carries anything but whitespace
func (r *ContactRequest) IsBot() bool {
	return strings.TrimSpace(string(r.HP)) != ""
}

// ContactResponse represents the response after submitting a contact form
type ContactResponse struct {
	OK     bool   `json:"ok"`
	Ticket string `json:"ticket,omitempty"`
}

// Decode parses a request body. The body is either a JSON object or a JSON
// string holding one. An empty body, or valid JSON that is not an object,
// decodes as an empty request.
func Decode(raw []byte) (*ContactRequest, error) {
	body := bytes.TrimSpace(raw)
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("decode contact body string: %w", err)
		}
		body = bytes.TrimSpace([]byte(inner))
	}

	var req ContactRequest
	if len(body) > 0 && body[0] != '{' && json.Valid(body) {
		return &req, nil
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("decode contact body: %w", err)
		}
	}
	req.Normalize()
	return &req, nil
}
