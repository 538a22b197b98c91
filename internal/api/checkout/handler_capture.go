package checkoutapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enrollment-app/internal/checkout"
	"enrollment-app/internal/validation"
)

// CaptureCheckout is the return leg: the browser came back through the
// gateway's success URL with its checkout key, and everything else is
// reconstructed from the persisted correlation record.
func (h *Handler) CaptureCheckout(c *gin.Context) {
	var req CheckoutKeyRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	o := h.orchestrator(c, checkout.WithKey(req.CheckoutKey))

	outcome, err := o.Resume(c.Request.Context())
	if err != nil {
		writeFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, CaptureResponse{
		State:            o.State().String(),
		Order:            outcome.Order,
		AlreadyCompleted: outcome.AlreadyCompleted,
	})
}

// CancelCheckout handles the gateway's cancel URL. The record is cleared and
// no capture is attempted; nothing was charged.
func (h *Handler) CancelCheckout(c *gin.Context) {
	var req CheckoutKeyRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	o := h.orchestrator(c, checkout.WithKey(req.CheckoutKey))

	if err := o.Cancel(c.Request.Context()); err != nil {
		writeFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": o.State().String()})
}
