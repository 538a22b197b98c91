package checkoutapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/billing"
	"enrollment-app/internal/infra/backendapi"
)

// Handler hosts the checkout orchestrator behind the HTTP surface. A fresh
// orchestrator is built per request; the correlation store is the only thing
// connecting the start leg to the return leg.
type Handler struct {
	backend  *backendapi.Client
	gateway  checkout.Gateway
	store    checkout.CorrelationStore
	recorder *billing.Recorder
	provider string
	validate *validatorv10.Validate
	log      *slog.Logger
}

func NewHandler(backend *backendapi.Client, gateway checkout.Gateway, store checkout.CorrelationStore, recorder *billing.Recorder, provider string, validate *validatorv10.Validate) *Handler {
	return &Handler{
		backend:  backend,
		gateway:  gateway,
		store:    store,
		recorder: recorder,
		provider: provider,
		validate: validate,
		log:      slog.Default(),
	}
}

func (h *Handler) orchestrator(c *gin.Context, opts ...checkout.Option) *checkout.Orchestrator {
	backend := h.backend
	if token := c.GetString("token"); token != "" {
		backend = backend.WithToken(token)
	}
	opts = append(opts,
		checkout.WithPaymentRecorder(h.provider, h.recorder),
		checkout.WithLogger(h.log),
	)
	return checkout.New(backend, h.gateway, h.store, opts...)
}

// writeFlowError maps the orchestrator's error taxonomy onto HTTP statuses.
// Raw causes never reach the response body.
func writeFlowError(c *gin.Context, err error) {
	if errors.Is(err, checkout.ErrTransitionInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "checkout action already in progress"})
		return
	}

	var fe *checkout.FlowError
	if !errors.As(err, &fe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
		return
	}

	switch fe.Class {
	case checkout.ClassUserCorrectable:
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Reason, "retryable": false})
	case checkout.ClassTransient:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fe.Reason, "retryable": true})
	case checkout.ClassIntegrity:
		c.JSON(http.StatusConflict, gin.H{"error": fe.Reason, "retryable": false})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": fe.Reason, "retryable": false})
	}
}
