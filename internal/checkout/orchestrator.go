package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/orders"
	"enrollment-app/internal/domain/plans"
	"enrollment-app/internal/domain/pricing"
)

// Orchestrator sequences one checkout attempt: plan load, the optional coupon
// sub-flow, order creation, the gateway round trip, and capture on return.
// One instance serves one attempt; a fresh instance plus the persisted
// correlation record is all the return leg gets to work with.
type Orchestrator struct {
	backend  BackendAPI
	gateway  Gateway
	store    CorrelationStore
	provider string
	payments PaymentRecorder
	log      *slog.Logger

	mu           sync.Mutex
	busy         bool
	key          string
	state        State
	plan         *plans.PricingPlan
	coupon       *coupons.Coupon
	couponReason string
	order        *orders.Order
	remote       *GatewayOrder
	failure      *FlowError
}

type Option func(*Orchestrator)

// WithKey resumes or continues the attempt identified by an existing
// checkout key instead of minting a new one.
func WithKey(key string) Option {
	return func(o *Orchestrator) { o.key = key }
}

func WithPaymentRecorder(provider string, r PaymentRecorder) Option {
	return func(o *Orchestrator) {
		o.provider = provider
		o.payments = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func New(backend BackendAPI, gateway Gateway, store CorrelationStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		gateway:  gateway,
		store:    store,
		provider: "gateway",
		log:      slog.Default(),
		key:      uuid.NewString(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Key identifies this attempt; it is the correlation store key handed back to
// the browser so the return leg can find its record.
func (o *Orchestrator) Key() string { return o.key }

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Plan() *plans.PricingPlan { return o.plan }
func (o *Orchestrator) Coupon() *coupons.Coupon  { return o.coupon }
func (o *Orchestrator) CouponReason() string     { return o.couponReason }
func (o *Orchestrator) Order() *orders.Order     { return o.order }
func (o *Orchestrator) Remote() *GatewayOrder    { return o.remote }
func (o *Orchestrator) Failure() *FlowError      { return o.failure }

// DisplayTotal re-runs the pricing engine for the current plan and coupon.
// Advisory only; the backend decides the charged amount.
func (o *Orchestrator) DisplayTotal() decimal.Decimal {
	if o.plan == nil {
		return decimal.Zero
	}
	return pricing.ComputeTotal(o.plan.Price, o.coupon)
}

// begin rejects a new triggering action while a transition is in flight and
// checks the current state is one the action is legal from.
func (o *Orchestrator) begin(allowed ...State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrTransitionInFlight
	}
	for _, s := range allowed {
		if o.state == s {
			o.busy = true
			return nil
		}
	}
	return &FlowError{
		Class:  ClassIntegrity,
		Reason: fmt.Sprintf("action not allowed in state %s", o.state),
	}
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// fail enters the terminal Failed state. The correlation record is deleted
// unconditionally on any terminal entry so a stale record can never replay.
func (o *Orchestrator) fail(ctx context.Context, fe *FlowError) *FlowError {
	o.failure = fe
	o.setState(StateFailed)
	o.clearCorrelation(ctx)
	o.log.Warn("checkout failed",
		"checkout_key", o.key,
		"class", int(fe.Class),
		"reason", fe.Reason,
	)
	return fe
}

func (o *Orchestrator) clearCorrelation(ctx context.Context) {
	if err := o.store.Delete(ctx, o.key); err != nil {
		o.log.Error("could not delete pending checkout record", "checkout_key", o.key, "err", err)
	}
}

// LoadPlan moves Idle -> PlanLoaded. A plan that cannot be loaded at all is
// fatal for this attempt: there is nothing to retry against.
func (o *Orchestrator) LoadPlan(ctx context.Context, planID string) error {
	if err := o.begin(StateIdle); err != nil {
		return err
	}
	defer o.end()

	plan, err := o.backend.GetPlan(ctx, planID)
	if err != nil {
		return o.fail(ctx, &FlowError{Class: ClassFatal, Reason: "plan could not be loaded", Err: err})
	}
	o.plan = plan
	o.setState(StatePlanLoaded)
	return nil
}

// couponStates are the states the re-entrant coupon sub-flow is reachable
// from: applying, removing and re-applying are all allowed before payment.
var couponStates = []State{StatePlanLoaded, StateCouponApplied, StateCouponRejected}

// ApplyCoupon validates a code for the loaded plan. Rejection and transport
// failure both land in CouponRejected, but the returned error class tells the
// caller whether "try again" or "fix the code" is the right message.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, code string) error {
	if err := o.begin(couponStates...); err != nil {
		return err
	}
	defer o.end()

	o.setState(StateCouponPending)
	o.coupon = nil

	result, err := o.backend.ValidateCoupon(ctx, code, o.plan.ID)
	if err != nil {
		o.couponReason = "validation unavailable"
		o.setState(StateCouponRejected)
		return &FlowError{Class: ClassTransient, Reason: o.couponReason, Err: err}
	}

	if !result.Valid {
		o.couponReason = result.Reason
		if o.couponReason == "" {
			o.couponReason = "invalid coupon"
		}
		o.setState(StateCouponRejected)
		return &FlowError{Class: ClassUserCorrectable, Reason: o.couponReason}
	}

	if result.Coupon == nil || !result.Coupon.Kind.Known() {
		o.couponReason = "unsupported discount type"
		o.setState(StateCouponRejected)
		return &FlowError{Class: ClassUserCorrectable, Reason: o.couponReason}
	}

	o.coupon = result.Coupon
	o.couponReason = ""
	o.setState(StateCouponApplied)
	return nil
}

// RemoveCoupon drops the applied or rejected coupon and returns to
// PlanLoaded. No network call is involved.
func (o *Orchestrator) RemoveCoupon() error {
	if err := o.begin(couponStates...); err != nil {
		return err
	}
	defer o.end()

	o.coupon = nil
	o.couponReason = ""
	o.setState(StatePlanLoaded)
	return nil
}

// Pay runs the learner's explicit "pay" action: create the backend order,
// create the remote gateway order, persist the correlation record, and only
// then hand out the approval URL. If the record cannot be written the
// navigation must not happen, so Pay fails closed before AwaitingApproval.
func (o *Orchestrator) Pay(ctx context.Context, billing orders.BillingDetails) error {
	if err := o.begin(StatePlanLoaded, StateCouponApplied, StateCouponRejected); err != nil {
		return err
	}
	defer o.end()

	couponCode := ""
	if o.coupon != nil {
		couponCode = o.coupon.Code
	}

	o.setState(StateOrderCreating)
	order, err := o.backend.CreateOrder(ctx, o.plan.ID, couponCode, billing)
	if err != nil {
		return o.fail(ctx, classify(err, "order could not be created"))
	}
	o.order = order
	o.setState(StateOrderCreated)

	o.setState(StateGatewayOrderCreating)
	remote, err := o.gateway.CreateRemoteOrder(ctx, order)
	if err != nil {
		return o.fail(ctx, classify(err, "payment could not be initiated"))
	}
	o.remote = remote
	o.recordRemoteOrder(ctx, order, remote)

	rec := PendingCheckout{
		CheckoutKey:    o.key,
		LocalOrderID:   order.ID,
		GatewayOrderID: remote.ID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := o.store.Put(ctx, rec); err != nil {
		return o.fail(ctx, &FlowError{
			Class:  ClassTransient,
			Reason: "could not persist checkout state",
			Err:    err,
		})
	}

	o.setState(StateAwaitingApproval)
	o.log.Info("awaiting gateway approval",
		"checkout_key", o.key,
		"order_id", order.ID,
		"gateway_order_id", remote.ID,
	)
	return nil
}

// ResumeOutcome reports how the return leg ended.
type ResumeOutcome struct {
	AlreadyCompleted bool
	Order            *orders.Order
}

// Resume rebuilds the attempt's position from the persisted correlation
// record alone and drives the capture. An absent record means a direct or
// replayed visit to the return URL: fail without touching the gateway.
func (o *Orchestrator) Resume(ctx context.Context) (*ResumeOutcome, error) {
	if err := o.begin(StateIdle); err != nil {
		return nil, err
	}
	defer o.end()

	rec, err := o.store.Get(ctx, o.key)
	if err != nil {
		return nil, o.fail(ctx, &FlowError{Class: ClassTransient, Reason: "could not read checkout state", Err: err})
	}
	if rec == nil {
		return nil, o.fail(ctx, &FlowError{Class: ClassIntegrity, Reason: "no pending order found"})
	}

	// Capture must run at most once on the success path. A duplicated
	// back/forward navigation re-enters here after the order was already
	// captured; short-circuit instead of invoking the provider again.
	order, err := o.backend.GetOrder(ctx, rec.LocalOrderID)
	if err == nil {
		switch {
		case order.Status == orders.StatusCaptured:
			o.order = order
			o.setState(StateCaptured)
			o.clearCorrelation(ctx)
			return &ResumeOutcome{AlreadyCompleted: true, Order: order}, nil
		case order.Status.Terminal():
			return nil, o.fail(ctx, &FlowError{
				Class:  ClassIntegrity,
				Reason: fmt.Sprintf("order is already %s", order.Status),
			})
		default:
			o.order = order
		}
	} else {
		// The pre-capture check is best-effort; the gateway remains the
		// authority on whether a capture can proceed.
		o.log.Warn("could not fetch order before capture", "order_id", rec.LocalOrderID, "err", err)
	}

	o.setState(StateCapturing)
	result, err := o.gateway.CaptureRemoteOrder(ctx, rec.LocalOrderID, rec.GatewayOrderID)
	if err != nil {
		o.recordOutcome(ctx, rec.GatewayOrderID, false, "", "")
		return nil, o.fail(ctx, classify(err, "payment could not be completed"))
	}

	if !result.Completed {
		o.recordOutcome(ctx, rec.GatewayOrderID, false, result.ProviderStatus, "")
		reason := result.Message
		if reason == "" {
			reason = "payment was not completed"
		}
		return nil, o.fail(ctx, &FlowError{Class: ClassTransient, Reason: reason})
	}

	o.recordOutcome(ctx, rec.GatewayOrderID, true, result.ProviderStatus, result.CaptureID)
	if o.order == nil {
		o.order = &orders.Order{ID: rec.LocalOrderID}
	}
	o.order.Status = orders.StatusCaptured
	o.setState(StateCaptured)
	o.clearCorrelation(ctx)
	o.log.Info("payment captured",
		"checkout_key", o.key,
		"order_id", rec.LocalOrderID,
		"capture_id", result.CaptureID,
	)
	return &ResumeOutcome{Order: o.order}, nil
}

// Cancel handles the learner returning through the gateway's cancel URL: the
// correlation record is cleared, capture is never called, and no charge was
// made.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	if err := o.begin(StateIdle, StateAwaitingApproval); err != nil {
		return err
	}
	defer o.end()

	if err := o.store.Delete(ctx, o.key); err != nil {
		return o.fail(ctx, &FlowError{Class: ClassTransient, Reason: "could not clear checkout state", Err: err})
	}
	o.setState(StateCancelled)
	o.log.Info("checkout cancelled", "checkout_key", o.key)
	return nil
}

func (o *Orchestrator) recordRemoteOrder(ctx context.Context, order *orders.Order, remote *GatewayOrder) {
	if o.payments == nil {
		return
	}
	if err := o.payments.RecordRemoteOrder(ctx, order, o.provider, remote.ID); err != nil {
		o.log.Error("could not record payment attempt", "order_id", order.ID, "err", err)
	}
}

func (o *Orchestrator) recordOutcome(ctx context.Context, providerOrderID string, completed bool, providerStatus, captureID string) {
	if o.payments == nil {
		return
	}
	if err := o.payments.RecordOutcome(ctx, providerOrderID, completed, providerStatus, captureID); err != nil {
		o.log.Error("could not record payment outcome", "gateway_order_id", providerOrderID, "err", err)
	}
}
