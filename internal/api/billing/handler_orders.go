package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enrollment-app/internal/apperrors"
)

func (h *Handler) ListOrders(c *gin.Context) {
	orderList, err := h.scoped(c).ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, orderList)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.scoped(c).GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load order"})
		return
	}
	c.JSON(http.StatusOK, order)
}
