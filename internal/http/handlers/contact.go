package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/services"
)

type ContactHandler struct {
	contacts services.ContactService
	content  services.ContentService
}

func NewContactHandler(contacts services.ContactService, content services.ContentService) *ContactHandler {
	return &ContactHandler{contacts: contacts, content: content}
}

// POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var in services.ContactInput
	if !bindJSON(c, &in) {
		return
	}
	meta := submitMeta(c)
	msg, err := h.contacts.Submit(c.Request.Context(), in, meta)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"id":      msg.ID,
		"message": h.content.T(c.Request.Context(), meta.Locale, "contact.success", nil),
	})
}

// GET /api/admin/contacts
func (h *ContactHandler) List(c *gin.Context) {
	unread := queryBool(c, "unread")
	res, err := h.contacts.List(c.Request.Context(), services.ContactListQuery{
		UnreadOnly: unread != nil && *unread,
		Page:       parsePage(c),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// PATCH /api/admin/contacts/:id/read
func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	msg, err := h.contacts.MarkRead(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

// DELETE /api/admin/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
