package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/services"
)

type BlogHandler struct {
	blog services.BlogService
}

func NewBlogHandler(blog services.BlogService) *BlogHandler {
	return &BlogHandler{blog: blog}
}

// GET /api/blog
func (h *BlogHandler) List(c *gin.Context) {
	res, err := h.blog.List(c.Request.Context(), requestLocale(c), c.Query("tag"), parsePage(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/blog/:slug
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blog.Get(c.Request.Context(), requestLocale(c), c.Param("slug"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post": post})
}

// GET /api/admin/blog
func (h *BlogHandler) AdminList(c *gin.Context) {
	res, err := h.blog.AdminList(c.Request.Context(), parsePage(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/admin/blog/:id
func (h *BlogHandler) AdminGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.blog.AdminGet(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post": post})
}

// POST /api/admin/blog
func (h *BlogHandler) Create(c *gin.Context) {
	var in services.BlogPostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.blog.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"post": post})
}

// PUT /api/admin/blog/:id
func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in services.BlogPostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.blog.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post": post})
}

// DELETE /api/admin/blog/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.blog.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
