package http

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/file"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{
		fileService: fileService,
	}
}

// ServeFile serves the file content by ID
func (h *Handler) ServeFile(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, err)
		return
	}

	stream, fileInfo, err := h.fileService.Download(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", fileInfo.ContentType)
	c.Header("Content-Disposition", "inline; filename=\""+fileInfo.Filename+"\"")
	h.stream(c, stream)
}

// ServeThumbnail serves the thumbnail image by file ID
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, err)
		return
	}

	stream, _, err := h.fileService.DownloadThumbnail(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	// Thumbnails are always JPEG
	c.Header("Content-Type", "image/jpeg")
	h.stream(c, stream)
}

func (h *Handler) stream(c *gin.Context, r io.Reader) {
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		// Response already started
		log.Printf("stream file failed: %v", err)
	}
}
