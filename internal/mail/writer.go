package mail

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// WriterSender writes each composed message to w instead of delivering it.
// Messages are separated by a line naming the recipient.
type WriterSender struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewWriterSender creates a sender that prints to w
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w, now: time.Now}
}

// Send implements Sender
func (s *WriterSender) Send(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := Compose(env, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "----- message to %s -----\n", strings.Join(Emails(env.To), ", ")); err != nil {
		return err
	}
	if _, err := s.w.Write(msg); err != nil {
		return err
	}
	_, err = io.WriteString(s.w, "\n")
	return err
}
