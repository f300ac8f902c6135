package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *handlers) myOrders(c *gin.Context) {
	u, _ := currentUser(c)
	orders, err := h.deps.Orders.ListForUser(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": orders})
}

func (h *handlers) orderBoard(c *gin.Context) {
	board, err := h.deps.Orders.Board(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlers) transitionOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id", "must be an integer")
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status", "required")
		return
	}
	order, err := h.deps.Orders.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) dashboard(c *gin.Context) {
	sum, err := h.deps.Dashboard.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.deps.Auth.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": users})
}
