package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/geonix/geonix-web/internal/api/constants"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodySize bounds request bodies read by PreserveRequestBody
const DefaultMaxBodySize = 1 << 20 // 1 MB

// ErrBodyTooLarge is stored on the context when a body exceeds the limit
var ErrBodyTooLarge = errors.New("request body too large")

// PreserveRequestBody reads the request body once and restores it so
// later handlers can read it again. Read failures are recorded on the
// context rather than answered here; the contact endpoint reports them
// in its own response format.
func PreserveRequestBody(maxBodySize int64) gin.HandlerFunc {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize+1))
		if err != nil {
			c.Set(constants.ContextKeyBodyError, fmt.Errorf("read request body: %w", err))
			c.Next()
			return
		}

		if int64(len(bodyBytes)) > maxBodySize {
			c.Set(constants.ContextKeyBodyError, ErrBodyTooLarge)
			c.Next()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		c.Set(constants.ContextKeyRawBody, bodyBytes)

		c.Next()
	}
}

// RawBody returns the bytes captured by PreserveRequestBody
func RawBody(c *gin.Context) ([]byte, error) {
	if v, ok := c.Get(constants.ContextKeyBodyError); ok {
		if err, ok := v.(error); ok {
			return nil, err
		}
	}
	if v, ok := c.Get(constants.ContextKeyRawBody); ok {
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	}
	if c.Request.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return b, nil
}
