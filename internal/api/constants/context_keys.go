package constants

// Context keys for validated requests
const (
	// Contact context keys
	ContextKeyContact = "contact"

	// Body reader context keys
	ContextKeyRawBody   = "rawBody"
	ContextKeyBodyError = "bodyError"

	// Request metadata
	ContextKeyRequestID = "RequestID"
)
