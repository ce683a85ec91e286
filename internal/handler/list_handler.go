package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/pricelist_api/internal/service"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// multipartOverhead is allowed on top of the image size for the other form parts.
const multipartOverhead = 64 << 10

// ListHandler serves the brand and logo lists used by the product form.
type ListHandler struct {
	catalog  *service.CatalogService
	logos    *service.LogoService
	maxBytes int64
}

func NewListHandler(catalog *service.CatalogService, logos *service.LogoService, maxBytes int64) *ListHandler {
	return &ListHandler{catalog: catalog, logos: logos, maxBytes: maxBytes}
}

// ListBrands handles GET /lists/brands
func (h *ListHandler) ListBrands(c *gin.Context) {
	brands, err := h.catalog.ListBrands(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Brands retrieved", brands)
}

// ListLogos handles GET /lists/logos
func (h *ListHandler) ListLogos(c *gin.Context) {
	logos, err := h.logos.ListLogos(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Logos retrieved", logos)
}

// CreateLogo handles POST /lists/logos (multipart: name, logoImage or image)
func (h *ListHandler) CreateLogo(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	data, err := h.readImage(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	logo, err := h.logos.CreateLogo(c.Request.Context(), c.PostForm("name"), data)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Logo created", logo)
}

// readImage returns nil data when no file part was sent.
func (h *ListHandler) readImage(c *gin.Context) ([]byte, error) {
	var (
		header *multipart.FileHeader
		err    error
	)
	for _, field := range []string{"logoImage", "image"} {
		header, err = c.FormFile(field)
		if !errors.Is(err, http.ErrMissingFile) {
			break
		}
	}
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return nil, nil
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, utils.NewValidationError("logoImage", fmt.Sprintf("logoImage must not exceed %d bytes", h.maxBytes))
		}
		return nil, utils.NewValidationError("logoImage", "request must be multipart/form-data with a logoImage file")
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	// one byte past the limit is enough for the service to reject it
	return io.ReadAll(io.LimitReader(f, h.maxBytes+1))
}
