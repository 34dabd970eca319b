package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/services"
)

type MediaHandler struct {
	log   *logger.Logger
	media services.MediaService
}

func NewMediaHandler(log *logger.Logger, media services.MediaService) *MediaHandler {
	return &MediaHandler{log: log.With("handler", "MediaHandler"), media: media}
}

// POST /api/admin/media (multipart: file, folder)
func (h *MediaHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeMissingFile, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidFile, err)
		return
	}
	defer f.Close()

	up, err := h.media.UploadImage(c.Request.Context(), c.PostForm("folder"), f)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.log.Info("Media uploaded", "key", up.Key, "size", up.Size)
	response.RespondCreated(c, gin.H{"media": up})
}

// DELETE /api/admin/media?key=
func (h *MediaHandler) Delete(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		response.RespondError(c, http.StatusBadRequest, services.CodeMissingKey, nil)
		return
	}
	if err := h.media.Delete(c.Request.Context(), key); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
