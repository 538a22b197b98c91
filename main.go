package main

import (
	"log"
	"time"

	"enrollment-app/config"
	"enrollment-app/database"
	billingapi "enrollment-app/internal/api/billing"
	checkoutapi "enrollment-app/internal/api/checkout"
	plansapi "enrollment-app/internal/api/plans"
	routes "enrollment-app/internal/app/http"
	"enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/billing"
	"enrollment-app/internal/infra/backendapi"
	"enrollment-app/internal/infra/paypal"
	"enrollment-app/internal/infra/stripe"
	"enrollment-app/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	backend := backendapi.New(config.BACKEND_API_URL)
	gateway := buildGateway()
	store := checkout.NewGormStore(database.DB)
	recorder := billing.NewRecorder(database.DB)
	validate := validation.New()

	h := routes.Handlers{
		Checkout: checkoutapi.NewHandler(backend, gateway, store, recorder, config.PAYMENT_PROVIDER, validate),
		Plans:    plansapi.NewHandler(backend),
		Billing:  billingapi.NewHandler(backend, recorder),
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, h)

	r.Run(":" + config.PORT)
}

// buildGateway selects the payment provider. The browser lands back on the
// frontend's success or cancel page, which then calls /checkout/capture or
// /checkout/cancel with its checkout key.
func buildGateway() checkout.Gateway {
	switch config.PAYMENT_PROVIDER {
	case "paypal":
		return paypal.New(paypal.Config{
			ClientID:     config.PAYPAL_CLIENT_ID,
			ClientSecret: config.PAYPAL_CLIENT_SECRET,
			Mode:         config.PAYPAL_MODE,
			ReturnURL:    config.APP_URL + "/payment/success",
			CancelURL:    config.APP_URL + "/payment/cancel",
			BrandName:    "Enrollment",
		})
	case "stripe":
		return stripe.NewGateway(
			config.STRIPE_SECRET_KEY,
			config.APP_URL+"/payment/success",
			config.APP_URL+"/payment/cancel",
		)
	default:
		log.Fatalf("Unknown PAYMENT_PROVIDER: %s", config.PAYMENT_PROVIDER)
		return nil
	}
}
