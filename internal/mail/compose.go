package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

const transferEncoding = "quoted-printable"

// ErrNoRecipients is returned for an envelope without any To address
var ErrNoRecipients = errors.New("mail: no recipients")

// Compose serializes env as an RFC 5322 message. With an HTML body the
// message is multipart/alternative, otherwise a single text/plain part.
func Compose(env Envelope, date time.Time) ([]byte, error) {
	if len(env.To) == 0 {
		return nil, ErrNoRecipients
	}

	var h gomail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*gomail.Address{toAddress(env.From)})
	h.SetAddressList("To", toAddressList(env.To))
	if len(env.ReplyTo) > 0 {
		h.SetAddressList("Reply-To", toAddressList(env.ReplyTo))
	}
	h.SetSubject(HeaderSafe(env.Subject))
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer

	if env.HTML == "" {
		h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
		h.Set("Content-Transfer-Encoding", transferEncoding)
		w, err := gomail.CreateSingleInlineWriter(&buf, h)
		if err != nil {
			return nil, fmt.Errorf("create message: %w", err)
		}
		if _, err := io.WriteString(w, env.Text); err != nil {
			return nil, fmt.Errorf("write text body: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("close message: %w", err)
		}
		return buf.Bytes(), nil
	}

	iw, err := gomail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if err := writePart(iw, "text/plain", env.Text); err != nil {
		return nil, err
	}
	if err := writePart(iw, "text/html", env.HTML); err != nil {
		return nil, err
	}
	if err := iw.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}

func writePart(iw *gomail.InlineWriter, contentType, body string) error {
	var ph gomail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	ph.Set("Content-Transfer-Encoding", transferEncoding)

	w, err := iw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return w.Close()
}

func toAddressList(list []Address) []*gomail.Address {
	out := make([]*gomail.Address, 0, len(list))
	for _, a := range list {
		out = append(out, toAddress(a))
	}
	return out
}

func toAddress(a Address) *gomail.Address {
	return &gomail.Address{Name: HeaderSafe(a.Name), Address: HeaderSafe(a.Email)}
}
