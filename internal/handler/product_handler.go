package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/pricelist_api/internal/service"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// ProductHandler serves the product endpoints.
type ProductHandler struct {
	catalog *service.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// ListProducts handles GET /products?q=&sort=&order=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), service.ListFilter{
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Products retrieved", products)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", product)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var in service.ProductInput
	if err := bindJSON(c, &in); err != nil {
		utils.RespondError(c, err)
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), &in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var in service.ProductInput
	if err := bindJSON(c, &in); err != nil {
		utils.RespondError(c, err)
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, &in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
