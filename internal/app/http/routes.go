package routes

import (
	"enrollment-app/internal/api/billing"
	checkoutapi "enrollment-app/internal/api/checkout"
	"enrollment-app/internal/api/plans"
	"enrollment-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Checkout *checkoutapi.Handler
	Plans    *plans.Handler
	Billing  *billing.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.GET("/plans", h.Plans.ListPlans)
	public.GET("/plans/:id", h.Plans.GetPlan)
	public.POST("/coupons/validate", h.Checkout.ValidateCoupon)
	public.POST("/checkout/quote", h.Checkout.Quote)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeAndCleanInputMiddleware())

	auth.GET("/checkout/context", h.Checkout.CheckoutContext)
	auth.POST("/checkout/start", h.Checkout.StartCheckout)
	auth.POST("/checkout/capture", h.Checkout.CaptureCheckout)
	auth.POST("/checkout/cancel", h.Checkout.CancelCheckout)

	auth.GET("/orders", h.Billing.ListOrders)
	auth.GET("/orders/:id", h.Billing.GetOrder)
	auth.GET("/payments", h.Billing.GetPaymentHistory)
}
