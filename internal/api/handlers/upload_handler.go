package handlers

import (
	"net/http"

	"chatterbox/internal/service"
	"chatterbox/pkg/response"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploads *service.UploadService
}

func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload handles POST /api/uploads. The returned file metadata is
// attached to a message by the client.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file form field is required")
		return
	}

	meta, err := h.uploads.Upload(c.Request.Context(), file)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"file":        meta,
		"messageType": service.KindFor(meta.MimeType),
	})
}
