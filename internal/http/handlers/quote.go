package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/services"
)

type QuoteHandler struct {
	log     *logger.Logger
	quotes  services.QuoteService
	content services.ContentService
}

func NewQuoteHandler(log *logger.Logger, quotes services.QuoteService, content services.ContentService) *QuoteHandler {
	return &QuoteHandler{log: log.With("handler", "QuoteHandler"), quotes: quotes, content: content}
}

// POST /api/quotes/steps/:step/validate
func (h *QuoteHandler) ValidateStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidStep, err)
		return
	}
	var in services.QuoteInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.quotes.ValidateStep(c.Request.Context(), step, in); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"valid": true})
}

// POST /api/quotes
func (h *QuoteHandler) Submit(c *gin.Context) {
	var in services.SubmitQuoteInput
	if !bindJSON(c, &in) {
		return
	}
	meta := submitMeta(c)
	q, err := h.quotes.Submit(c.Request.Context(), in, meta)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"reference": q.Reference,
		"status":    q.Status,
		"message":   h.content.T(c.Request.Context(), meta.Locale, "quote.success", map[string]any{"Reference": q.Reference}),
	})
}

// GET /api/admin/quotes
func (h *QuoteHandler) List(c *gin.Context) {
	res, err := h.quotes.List(c.Request.Context(), services.QuoteListQuery{
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Page:   parsePage(c),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/admin/quotes/counts
func (h *QuoteHandler) Counts(c *gin.Context) {
	counts, err := h.quotes.CountByStatus(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"counts": counts})
}

// GET /api/admin/quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	q, err := h.quotes.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quote": q})
}

// PATCH /api/admin/quotes/:id/status
func (h *QuoteHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in services.QuoteStatusInput
	if !bindJSON(c, &in) {
		return
	}
	q, err := h.quotes.ChangeStatus(c.Request.Context(), id, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quote": q})
}

// DELETE /api/admin/quotes/:id
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.quotes.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
