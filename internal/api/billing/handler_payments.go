package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enrollment-app/internal/domain/billing"
	"enrollment-app/internal/domain/orders"
	"enrollment-app/internal/infra/backendapi"
)

// Handler serves the learner's order history and the local payment audit
// trail. Orders come from the backend; the audit rows are this service's own.
type Handler struct {
	backend  *backendapi.Client
	recorder *billing.Recorder
}

func NewHandler(backend *backendapi.Client, recorder *billing.Recorder) *Handler {
	return &Handler{backend: backend, recorder: recorder}
}

func (h *Handler) scoped(c *gin.Context) *backendapi.Client {
	if token := c.GetString("token"); token != "" {
		return h.backend.WithToken(token)
	}
	return h.backend
}

type paymentHistoryEntry struct {
	Order    orders.Order      `json:"order"`
	Payments []billing.Payment `json:"payments"`
}

// GetPaymentHistory joins the backend's orders with the gateway attempts this
// service recorded for them, newest order first.
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	orderList, err := h.scoped(c).ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load orders"})
		return
	}

	ids := make([]string, 0, len(orderList))
	for _, o := range orderList {
		ids = append(ids, o.ID)
	}

	byOrder := map[string][]billing.Payment{}
	if len(ids) > 0 {
		payments, err := h.recorder.ListByOrderIDs(c.Request.Context(), ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
			return
		}
		for _, p := range payments {
			byOrder[p.OrderID] = append(byOrder[p.OrderID], p)
		}
	}

	history := make([]paymentHistoryEntry, 0, len(orderList))
	for _, o := range orderList {
		history = append(history, paymentHistoryEntry{Order: o, Payments: byOrder[o.ID]})
	}

	c.JSON(http.StatusOK, history)
}
