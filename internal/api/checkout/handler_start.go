package checkoutapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enrollment-app/internal/validation"
)

// StartCheckout runs the pre-redirect leg in one request: load the plan,
// apply the coupon if one was sent, create the orders and persist the
// correlation record. On success the client navigates to approval_url and
// keeps checkout_key for the return leg.
func (h *Handler) StartCheckout(c *gin.Context) {
	var req StartCheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	o := h.orchestrator(c)

	if err := o.LoadPlan(c.Request.Context(), req.PlanID); err != nil {
		writeFlowError(c, err)
		return
	}

	if req.CouponCode != "" {
		// A rejected code stops the request here; the client re-validates
		// through /coupons/validate and retries start without the code or
		// with a corrected one.
		if err := o.ApplyCoupon(c.Request.Context(), req.CouponCode); err != nil {
			writeFlowError(c, err)
			return
		}
	}

	if err := o.Pay(c.Request.Context(), req.Billing); err != nil {
		writeFlowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StartCheckoutResponse{
		CheckoutKey:  o.Key(),
		State:        o.State().String(),
		Order:        o.Order(),
		ApprovalURL:  o.Remote().ApprovalURL,
		DisplayTotal: o.DisplayTotal().StringFixed(2),
	})
}
