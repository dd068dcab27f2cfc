package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.NotFound("file not found")
	ErrNoThumbnail    = apperror.NotFound("thumbnail not available for this file")
	ErrEmptyFile      = apperror.Validation("file is empty")
	ErrFileTooLarge   = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrTypeNotAllowed = apperror.New(http.StatusUnsupportedMediaType, "file type is not allowed")
	ErrInvalidImage   = apperror.Validation("file is not a valid image")
)

// File is an uploaded blob. Service images point at one.
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
