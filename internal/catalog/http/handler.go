package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/catalog"
	"github.com/nekogravitycat/servicehub-backend/internal/file"
	fileHttp "github.com/nekogravitycat/servicehub-backend/internal/file/http"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
)

var errNoFields = apperror.Validation("no fields to update")

const maxImageBytes = 5 << 20

type Handler struct {
	service     catalog.Service
	fileHandler *fileHttp.Handler
}

func NewHandler(service catalog.Service, fileHandler *fileHttp.Handler) *Handler {
	return &Handler{
		service:     service,
		fileHandler: fileHandler,
	}
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CategoryResponse, len(cats))
	for i, cat := range cats {
		items[i] = NewCategoryResponse(cat)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) ListServices(c *gin.Context) {
	var req ListServicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	services, total, err := h.service.ListServices(c.Request.Context(), catalog.ServiceFilter{
		ProviderID: req.ProviderID,
		CategoryID: req.CategoryID,
		ActiveOnly: true,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ServiceResponse, len(services))
	for i, s := range services {
		items[i] = NewServiceResponse(s)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.ListParams, total))
}

func (h *Handler) GetService(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	s, err := h.service.GetService(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewServiceResponse(s))
}

func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	s, err := h.service.CreateService(c.Request.Context(), auth.GetActor(c), catalog.CreateServiceRequest{
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		BasePrice:         req.BasePrice,
		PriceUnit:         req.PriceUnit,
		EstimatedDuration: req.EstimatedDuration,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewServiceResponse(s))
}

func (h *Handler) UpdateService(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	s, err := h.service.UpdateService(c.Request.Context(), auth.GetActor(c), uri.ID, catalog.UpdateServiceRequest{
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		BasePrice:         req.BasePrice,
		PriceUnit:         req.PriceUnit,
		EstimatedDuration: req.EstimatedDuration,
		IsActive:          req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewServiceResponse(s))
}

func (h *Handler) ListImages(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	images, err := h.service.ListImages(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ImageResponse, len(images))
	for i, img := range images {
		items[i] = NewImageResponse(img)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UploadImage stores a multipart image and attaches it to the service.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var form UploadImageForm
	if err := c.ShouldBind(&form); err != nil {
		response.BindError(c, err)
		return
	}

	actor := auth.GetActor(c)

	// Check ownership before accepting the upload.
	if _, err := h.service.CheckOwner(c.Request.Context(), actor, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, fileHttp.FileUploadConfig{
		MaxSizeBytes: maxImageBytes,
		AllowedTypes: []string{"image/jpeg", "image/png"},
		ResizeImage:  true,
		AfterUpload: func(ctx context.Context, f *file.File) (any, error) {
			img, err := h.service.AddImage(ctx, actor, catalog.AddImageRequest{
				ServiceID: uri.ID,
				FileID:    f.ID,
				Caption:   form.Caption,
				IsPrimary: form.IsPrimary,
			})
			if err != nil {
				return nil, err
			}
			return NewImageResponse(img), nil
		},
	})
}
