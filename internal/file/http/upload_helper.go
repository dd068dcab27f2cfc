package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/file"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
)

// FileUploadConfig defines the configuration for generic file uploads
type FileUploadConfig struct {
	FormFieldName string   // default: "file"
	MaxSizeBytes  int64    // 0 = no limit
	AllowedTypes  []string // empty = allow all
	ResizeImage   bool     // store as JPEG no larger than 1000x1000

	// AfterUpload links the file to its owner. Its result becomes the response body.
	AfterUpload func(ctx context.Context, f *file.File) (any, error)
}

// HandleFileUpload stores the uploaded file, then runs AfterUpload.
// If the hook fails the file is deleted again.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldName + " is required"})
		return
	}

	f, err := h.fileService.Upload(c.Request.Context(), file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		ResizeImage:  config.ResizeImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		body, err := config.AfterUpload(c.Request.Context(), f)
		if err != nil {
			_ = h.fileService.Delete(c.Request.Context(), f.ID)
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, body)
		return
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}

	c.JSON(http.StatusCreated, FileUploadResponse{
		Message:      "file uploaded successfully",
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
	})
}
