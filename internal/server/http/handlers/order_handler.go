package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Submit handles POST /api/user/orders.
func (h *OrderHandler) Submit(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}
	input, err := req.ToModel()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.facade.SubmitOrder(c.Request.Context(), CurrentPrincipal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromOrder(*order))
}

// Own handles GET /api/user/orders.
func (h *OrderHandler) Own(c *gin.Context) {
	principal := CurrentPrincipal(c)
	h.respondList(c, principal, principal.UserID)
}

// ForUser handles GET /api/users/:userID/orders.
func (h *OrderHandler) ForUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || userID <= 0 {
		badRequest(c, "invalid user id")
		return
	}
	h.respondList(c, CurrentPrincipal(c), userID)
}

func (h *OrderHandler) respondList(c *gin.Context, principal model.Principal, userID int64) {
	orders, err := h.facade.Orders(c.Request.Context(), principal, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrders(orders))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := model.ParseOrderStatus(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		status = &parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	orders, err := h.facade.ListOrders(c.Request.Context(), CurrentPrincipal(c), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrders(orders))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order))
}

// Change handles PATCH /api/orders/:id.
func (h *OrderHandler) Change(c *gin.Context) {
	var req dto.OrderChange
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.facade.ChangeOrder(c.Request.Context(), CurrentPrincipal(c), c.Param("id"), req.ToModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order))
}

// Reject handles POST /api/orders/:id/reject.
func (h *OrderHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.facade.RejectOrder(c.Request.Context(), CurrentPrincipal(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(*order))
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteOrder(c.Request.Context(), CurrentPrincipal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
