package handlers

import (
	"errors"
	"net/http"

	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/api/dto/v1/contact"
	"github.com/geonix/geonix-web/internal/api/middleware"
	"github.com/geonix/geonix-web/internal/service"
	"github.com/geonix/geonix-web/internal/utils"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	// Get contact data from context (set by validation middleware)
	req, ok := middleware.ContactFromContext(c)
	if !ok {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeSendFailed, "Contact data not found in context")
		return
	}

	result, err := h.contactService.Submit(c.Request.Context(), service.Inquiry{
		Name:    string(req.Name),
		Email:   string(req.Email),
		Message: string(req.Message),
		Company: string(req.Company),
		Phone:   string(req.Phone),
		Website: string(req.Website),
	})
	switch {
	case errors.Is(err, service.ErrNotConfigured):
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeServerNotConfigured, "Mail transport is not configured")
		return
	case errors.Is(err, service.ErrAutoReplyFailed):
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeSendFailed, "Auto-reply failed after admin notification")
		return
	case err != nil:
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeSendFailed, "CONTACT_API_ERROR")
		return
	}

	utils.HandleSuccess(c, contact.ContactResponse{
		OK:     true,
		Ticket: result.Ticket,
	})
}
