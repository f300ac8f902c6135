package httpserver

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.deps.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": cats})
}

func (h *handlers) listProducts(c *gin.Context) {
	categoryID, ok := categoryQuery(c)
	if !ok {
		return
	}
	products, err := h.deps.Catalog.ListActiveProducts(c.Request.Context(), categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) storefront(c *gin.Context) {
	categoryID, ok := categoryQuery(c)
	if !ok {
		return
	}
	view, err := h.deps.Catalog.Storefront(c.Request.Context(), categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// categoryQuery parses the optional categoryId query parameter.
func categoryQuery(c *gin.Context) (*int64, bool) {
	raw := c.Query("categoryId")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "categoryId", "must be an integer")
		return nil, false
	}
	return &id, true
}

type categoryRequest struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

func (h *handlers) upsertCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid JSON")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	saved, err := h.deps.Catalog.UpsertCategory(c.Request.Context(), domain.Category{ID: req.ID, Name: req.Name, Active: active})
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if req.ID == 0 {
		status = http.StatusCreated
	}
	c.JSON(status, saved)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id", "must be an integer")
		return
	}
	if err := h.deps.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type productRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CategoryID  int64           `json:"categoryId"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Active      *bool           `json:"active"`
}

func (h *handlers) upsertProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid JSON")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	saved, err := h.deps.Catalog.UpsertProduct(c.Request.Context(), domain.Product{
		ID:          req.ID,
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
		Active:      active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handlers) listAllProducts(c *gin.Context) {
	products, err := h.deps.Catalog.ListAllProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
