package checkoutapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CheckoutContext returns the billing prefill for the signed-in learner,
// taken from the verified token claims.
func (h *Handler) CheckoutContext(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"billing": gin.H{
			"name":  c.GetString("name"),
			"email": c.GetString("email"),
		},
	})
}
