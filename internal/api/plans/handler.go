package plans

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enrollment-app/internal/apperrors"
	"enrollment-app/internal/infra/backendapi"
)

// Handler proxies the backend's plan catalog. Plans live on the backend; this
// service never stores its own copy.
type Handler struct {
	backend *backendapi.Client
}

func NewHandler(backend *backendapi.Client) *Handler {
	return &Handler{backend: backend}
}

func (h *Handler) ListPlans(c *gin.Context) {
	list, err := h.backend.ListPlans(c.Request.Context(), c.Query("program_id"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load plans"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetPlan(c *gin.Context) {
	plan, err := h.backend.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}
