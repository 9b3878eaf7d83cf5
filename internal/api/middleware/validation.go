package middleware

import (
	"net/http"

	"github.com/geonix/geonix-web/internal/api/constants"
	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/api/dto/v1/contact"
	"github.com/geonix/geonix-web/internal/api/validation"
	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationMiddleware handles request parsing and validation
type ValidationMiddleware struct {
	validate *validator.Validate
	logger   *logging.Logger
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *logging.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{
		validate: validation.New(),
		logger:   logger,
	}
}

// ParseContactRequest decodes the body into a contact.ContactRequest and
// stores it on the context. Unreadable bodies are reported as send_failed.
func (m *ValidationMiddleware) ParseContactRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := RawBody(c)
		if err == nil {
			var req *contact.ContactRequest
			req, err = contact.Decode(raw)
			if err == nil {
				c.Set(constants.ContextKeyContact, req)
				c.Next()
				return
			}
		}

		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeSendFailed, "CONTACT_API_ERROR")
	}
}

// ValidateContactRequest checks required fields, email format and length
// ceilings, answering with the first failing rule's code.
func (m *ValidationMiddleware) ValidateContactRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := ContactFromContext(c)
		if !ok {
			utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeSendFailed, "Contact data not found in context")
			return
		}

		if err := m.validate.Struct(req); err != nil {
			code := validation.ContactErrorCode(err)
			m.logger.Debug("Contact validation failed (%s): %+v", code, validation.FormatValidationError(err))
			utils.AbortWithCode(c, http.StatusBadRequest, code)
			return
		}

		c.Next()
	}
}

// ContactFromContext returns the request stored by ParseContactRequest
func ContactFromContext(c *gin.Context) (*contact.ContactRequest, bool) {
	v, exists := c.Get(constants.ContextKeyContact)
	if !exists {
		return nil, false
	}
	req, ok := v.(*contact.ContactRequest)
	return req, ok
}
