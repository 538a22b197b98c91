package checkoutapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enrollment-app/internal/apperrors"
	"enrollment-app/internal/domain/pricing"
	"enrollment-app/internal/validation"
)

// ValidateCoupon is the stateless validation used while the learner is still
// on the checkout page. A rejected code is a 200 with valid=false; only a
// backend outage is an error, and it is marked retryable.
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	result, err := h.backend.ValidateCoupon(c.Request.Context(), req.Code, req.PlanID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     apperrors.MessageOf(err),
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Quote recomputes the display total for a plan and optional coupon. Advisory
// only; the backend recomputes the charged amount at order creation.
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	plan, err := h.backend.GetPlan(c.Request.Context(), req.PlanID)
	if err != nil {
		writeBackendError(c, err)
		return
	}

	resp := gin.H{
		"plan_id":  plan.ID,
		"currency": plan.Currency,
		"subtotal": plan.Price.StringFixed(2),
		"total":    plan.Price.StringFixed(2),
	}

	if req.CouponCode != "" {
		result, err := h.backend.ValidateCoupon(c.Request.Context(), req.CouponCode, req.PlanID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     apperrors.MessageOf(err),
				"retryable": true,
			})
			return
		}
		if !result.Valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": result.Reason, "retryable": false})
			return
		}
		total := pricing.ComputeTotal(plan.Price, result.Coupon)
		resp["coupon"] = result.Coupon
		resp["discount"] = pricing.Discount(plan.Price, result.Coupon).StringFixed(2)
		resp["total"] = total.StringFixed(2)
	}

	c.JSON(http.StatusOK, resp)
}

func writeBackendError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.MessageOf(err)})
	case apperrors.KindInvalid:
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.MessageOf(err)})
	case apperrors.KindUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": apperrors.MessageOf(err), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}
