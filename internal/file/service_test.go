package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/storage"
)

type memStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStorage() *memStorage { return &memStorage{blobs: map[string][]byte{}} }

func (m *memStorage) Save(_ context.Context, path string, content io.Reader) error {
	b, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = b
	return nil
}

func (m *memStorage) Get(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotExist, path)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStorage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, path)
	return nil
}

type memRepo struct {
	files   map[string]*File
	failing bool
}

func (r *memRepo) Create(_ context.Context, f *File) error {
	if r.failing {
		return fmt.Errorf("insert failed")
	}
	r.files[f.ID] = f
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*File, error) {
	if f, ok := r.files[id]; ok {
		return f, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.files, id)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(10<<20))
	return req.MultipartForm.File["file"][0]
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("Image Gets Resized And Thumbnailed", func(t *testing.T) {
		store := newMemStorage()
		repo := &memRepo{files: map[string]*File{}}
		svc := NewService(repo, store)

		f, err := svc.Upload(ctx, UploadInput{
			FileHeader:   fileHeader(t, "photo.png", pngBytes(t, 1200, 600)),
			UserID:       "u1",
			AllowedTypes: []string{"image/png", "image/jpeg"},
			ResizeImage:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", f.ContentType)
		require.NotNil(t, f.ThumbnailPath)
		assert.Len(t, store.blobs, 2)

		stream, _, err := svc.Download(ctx, f.ID)
		require.NoError(t, err)
		defer stream.Close()
		cfg, _, err := image.DecodeConfig(stream)
		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.Width)
		assert.Equal(t, 500, cfg.Height)

		thumb, _, err := svc.DownloadThumbnail(ctx, f.ID)
		require.NoError(t, err)
		defer thumb.Close()
		cfg, _, err = image.DecodeConfig(thumb)
		require.NoError(t, err)
		assert.Equal(t, 200, cfg.Width)
	})

	t.Run("Rejects Disallowed Type", func(t *testing.T) {
		svc := NewService(&memRepo{files: map[string]*File{}}, newMemStorage())
		_, err := svc.Upload(ctx, UploadInput{
			FileHeader:   fileHeader(t, "notes.txt", []byte("plain text")),
			AllowedTypes: []string{"image/png"},
		})
		assert.ErrorIs(t, err, ErrTypeNotAllowed)
	})

	t.Run("Rejects Too Large", func(t *testing.T) {
		svc := NewService(&memRepo{files: map[string]*File{}}, newMemStorage())
		_, err := svc.Upload(ctx, UploadInput{
			FileHeader:   fileHeader(t, "a.png", pngBytes(t, 10, 10)),
			MaxSizeBytes: 10,
		})
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("Non Image Has No Thumbnail", func(t *testing.T) {
		svc := NewService(&memRepo{files: map[string]*File{}}, newMemStorage())
		f, err := svc.Upload(ctx, UploadInput{FileHeader: fileHeader(t, "notes.txt", []byte("plain text"))})
		require.NoError(t, err)
		assert.Nil(t, f.ThumbnailPath)

		_, _, err = svc.DownloadThumbnail(ctx, f.ID)
		assert.ErrorIs(t, err, ErrNoThumbnail)
	})

	t.Run("Repository Failure Cleans Storage", func(t *testing.T) {
		store := newMemStorage()
		svc := NewService(&memRepo{files: map[string]*File{}, failing: true}, store)
		_, err := svc.Upload(ctx, UploadInput{FileHeader: fileHeader(t, "a.png", pngBytes(t, 10, 10))})
		require.Error(t, err)
		assert.Empty(t, store.blobs)
	})

	t.Run("Delete Removes Blobs", func(t *testing.T) {
		store := newMemStorage()
		repo := &memRepo{files: map[string]*File{}}
		svc := NewService(repo, store)
		f, err := svc.Upload(ctx, UploadInput{FileHeader: fileHeader(t, "a.png", pngBytes(t, 10, 10))})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, f.ID))
		assert.Empty(t, store.blobs)
		_, err = svc.Get(ctx, f.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
