package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/storage"
)

const (
	thumbnailSize = 200
	maxImageSize  = 1000
)

// UploadInput describes one multipart upload and the rules it must satisfy.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       string
	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // empty = allow all
	ResizeImage  bool     // decode, shrink to 1000x1000 and store as JPEG
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	header := in.FileHeader
	if header.Size == 0 {
		return nil, ErrEmptyFile
	}
	if in.MaxSizeBytes > 0 && header.Size > in.MaxSizeBytes {
		return nil, ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	// Sniff rather than trust the client's Content-Type header.
	contentType := http.DetectContentType(content)
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, contentType) {
		return nil, ErrTypeNotAllowed
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if in.ResizeImage {
		resized, err := s.imgProc.Fit(bytes.NewReader(content), maxImageSize, maxImageSize)
		if err != nil {
			return nil, ErrInvalidImage
		}
		if content, err = io.ReadAll(resized); err != nil {
			return nil, fmt.Errorf("failed to read resized image: %w", err)
		}
		contentType = "image/jpeg"
		ext = ".jpg"
	}

	fileID := uuid.New().String()

	// Sharding path: upload/ab/UUID.ext
	shard := fileID[:2]
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumbnailPath = s.saveThumbnail(ctx, content, shard, fileID)
	}

	f := &File{
		ID:            fileID,
		UserID:        in.UserID,
		Filename:      filepath.Base(header.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeBlobs(ctx, f)
		return nil, err
	}

	return f, nil
}

// saveThumbnail is best effort; the upload succeeds without one.
func (s *service) saveThumbnail(ctx context.Context, content []byte, shard, fileID string) *string {
	thumb, err := s.imgProc.Fit(bytes.NewReader(content), thumbnailSize, thumbnailSize)
	if err != nil {
		log.Printf("thumbnail generation failed for file %s: %v", fileID, err)
		return nil
	}

	path := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
	if err := s.storage.Save(ctx, path, thumb); err != nil {
		log.Printf("thumbnail save failed for file %s: %v", fileID, err)
		return nil
	}
	return &path
}

func (s *service) removeBlobs(ctx context.Context, f *File) {
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		log.Printf("failed to delete stored file %s: %v", f.ID, err)
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			log.Printf("failed to delete stored thumbnail %s: %v", f.ID, err)
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, f)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}

	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}

	return stream, f, nil
}
