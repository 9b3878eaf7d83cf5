package service

import "errors"

// Sentinel errors for service layer
var (
	ErrNotConfigured = errors.New("mail transport not configured")
	ErrSendFailed    = errors.New("send failed")
	// ErrAutoReplyFailed marks a submission whose admin notification went
	// out but whose auto-reply did not. It always wraps ErrSendFailed too.
	ErrAutoReplyFailed = errors.New("auto-reply failed after admin notification")
)
