package httpserver

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartLineResponse struct {
	ID          int64           `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Product     *domain.Product `json:"product"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

func (h *handlers) getCart(c *gin.Context) {
	u, _ := currentUser(c)
	view, err := h.deps.Cart.View(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := cartResponse{Lines: make([]cartLineResponse, 0, len(view.Lines)), Total: view.Total}
	for _, l := range view.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ID:          l.Item.ID,
			ProductID:   l.Item.ProductID,
			ProductName: l.ProductName(),
			Product:     l.Product,
			Quantity:    l.Item.Quantity,
			TotalPrice:  l.Item.TotalPrice,
		})
	}
	c.JSON(http.StatusOK, resp)
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId", "required")
		return
	}
	u, _ := currentUser(c)
	item, err := h.deps.Cart.AddItem(c.Request.Context(), u.ID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id", "must be an integer")
		return
	}
	u, _ := currentUser(c)
	if err := h.deps.Cart.RemoveOwnedItem(c.Request.Context(), u.ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	Total   decimal.Decimal `json:"total"`
	Contact domain.Contact  `json:"contact"`
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid JSON")
		return
	}
	u, _ := currentUser(c)
	order, err := h.deps.Checkout.Checkout(c.Request.Context(), u.ID, req.Total, req.Contact)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
