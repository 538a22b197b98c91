package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollment-app/internal/apperrors"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/orders"
	"enrollment-app/internal/domain/plans"
)

type fakeBackend struct {
	getPlanFn        func(ctx context.Context, planID string) (*plans.PricingPlan, error)
	validateCouponFn func(ctx context.Context, code, planID string) (*coupons.ValidationResult, error)
	createOrderFn    func(ctx context.Context, planID, couponCode string, billing orders.BillingDetails) (*orders.Order, error)
	getOrderFn       func(ctx context.Context, orderID string) (*orders.Order, error)
}

func (f *fakeBackend) GetPlan(ctx context.Context, planID string) (*plans.PricingPlan, error) {
	return f.getPlanFn(ctx, planID)
}

func (f *fakeBackend) ValidateCoupon(ctx context.Context, code, planID string) (*coupons.ValidationResult, error) {
	return f.validateCouponFn(ctx, code, planID)
}

func (f *fakeBackend) CreateOrder(ctx context.Context, planID, couponCode string, billing orders.BillingDetails) (*orders.Order, error) {
	return f.createOrderFn(ctx, planID, couponCode, billing)
}

func (f *fakeBackend) GetOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	if f.getOrderFn == nil {
		return nil, apperrors.NotFound("order not found")
	}
	return f.getOrderFn(ctx, orderID)
}

type fakeGateway struct {
	createCalls  int
	captureCalls int
	createFn     func(ctx context.Context, order *orders.Order) (*GatewayOrder, error)
	captureFn    func(ctx context.Context, localOrderID, gatewayOrderID string) (*CaptureResult, error)
}

func (f *fakeGateway) CreateRemoteOrder(ctx context.Context, order *orders.Order) (*GatewayOrder, error) {
	f.createCalls++
	return f.createFn(ctx, order)
}

func (f *fakeGateway) CaptureRemoteOrder(ctx context.Context, localOrderID, gatewayOrderID string) (*CaptureResult, error) {
	f.captureCalls++
	return f.captureFn(ctx, localOrderID, gatewayOrderID)
}

type failingStore struct {
	*MemoryStore
	putErr error
}

func (s *failingStore) Put(ctx context.Context, rec PendingCheckout) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, rec)
}

func testPlan() *plans.PricingPlan {
	return &plans.PricingPlan{
		ID:       "plan-1",
		Name:     "Full Program",
		Price:    decimal.NewFromInt(200),
		Currency: "USD",
	}
}

func happyBackend() *fakeBackend {
	return &fakeBackend{
		getPlanFn: func(_ context.Context, planID string) (*plans.PricingPlan, error) {
			return testPlan(), nil
		},
		validateCouponFn: func(_ context.Context, code, planID string) (*coupons.ValidationResult, error) {
			return &coupons.ValidationResult{
				Valid:  true,
				Coupon: &coupons.Coupon{Code: code, Kind: coupons.DiscountPercentage, Value: decimal.NewFromInt(25)},
			}, nil
		},
		createOrderFn: func(_ context.Context, planID, couponCode string, _ orders.BillingDetails) (*orders.Order, error) {
			return &orders.Order{
				ID:       "order-1",
				PlanID:   planID,
				Amount:   decimal.NewFromInt(150),
				Currency: "USD",
				Status:   orders.StatusPending,
			}, nil
		},
	}
}

func happyGateway() *fakeGateway {
	return &fakeGateway{
		createFn: func(_ context.Context, order *orders.Order) (*GatewayOrder, error) {
			return &GatewayOrder{ID: "pp-1", ApprovalURL: "https://gateway.test/approve/pp-1"}, nil
		},
		captureFn: func(_ context.Context, localOrderID, gatewayOrderID string) (*CaptureResult, error) {
			return &CaptureResult{Completed: true, CaptureID: "cap-1", ProviderStatus: "COMPLETED"}, nil
		},
	}
}

func billing() orders.BillingDetails {
	return orders.BillingDetails{Name: "Ada Lovelace", Email: "ada@example.com", Country: "GB"}
}

func TestFullCheckoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	gateway := happyGateway()

	first := New(happyBackend(), gateway, store, WithKey("k1"))

	require.NoError(t, first.LoadPlan(ctx, "plan-1"))
	require.NoError(t, first.ApplyCoupon(ctx, "SAVE25"))
	assert.Equal(t, "150", first.DisplayTotal().String())
	require.NoError(t, first.Pay(ctx, billing()))
	assert.Equal(t, StateAwaitingApproval, first.State())

	// The record must exist before any navigation away.
	rec, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "order-1", rec.LocalOrderID)
	assert.Equal(t, "pp-1", rec.GatewayOrderID)

	// The return leg gets a fresh instance and only the key.
	second := New(happyBackend(), gateway, store, WithKey("k1"))
	outcome, err := second.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateCaptured, second.State())
	assert.False(t, outcome.AlreadyCompleted)
	assert.Equal(t, orders.StatusCaptured, outcome.Order.Status)
	assert.Equal(t, 1, gateway.captureCalls)

	// Terminal state clears the record.
	rec, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCouponRejectionIsRecoverable(t *testing.T) {
	ctx := context.Background()
	backend := happyBackend()
	backend.validateCouponFn = func(_ context.Context, code, planID string) (*coupons.ValidationResult, error) {
		return &coupons.ValidationResult{Valid: false, Reason: "coupon expired"}, nil
	}

	o := New(backend, happyGateway(), NewMemoryStore())
	require.NoError(t, o.LoadPlan(ctx, "plan-1"))

	err := o.ApplyCoupon(ctx, "OLD")
	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassUserCorrectable, fe.Class)
	assert.Equal(t, "coupon expired", fe.Reason)
	assert.Equal(t, StateCouponRejected, o.State())

	// Rejection is not terminal: paying at full price still works.
	assert.Equal(t, "200", o.DisplayTotal().String())
	require.NoError(t, o.Pay(ctx, billing()))
	assert.Equal(t, StateAwaitingApproval, o.State())
}

func TestCouponValidationOutageIsTransient(t *testing.T) {
	ctx := context.Background()
	backend := happyBackend()
	backend.validateCouponFn = func(_ context.Context, code, planID string) (*coupons.ValidationResult, error) {
		return nil, apperrors.Unavailable("backend unavailable", errors.New("connection refused"))
	}

	o := New(backend, happyGateway(), NewMemoryStore())
	require.NoError(t, o.LoadPlan(ctx, "plan-1"))

	err := o.ApplyCoupon(ctx, "SAVE25")
	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassTransient, fe.Class)
	assert.Equal(t, "validation unavailable", fe.Reason)
	assert.Equal(t, StateCouponRejected, o.State())
	assert.Nil(t, o.Coupon())
}

func TestRemoveCouponRestoresFullPrice(t *testing.T) {
	ctx := context.Background()

	o := New(happyBackend(), happyGateway(), NewMemoryStore())
	require.NoError(t, o.LoadPlan(ctx, "plan-1"))
	require.NoError(t, o.ApplyCoupon(ctx, "SAVE25"))
	assert.Equal(t, "150", o.DisplayTotal().String())

	require.NoError(t, o.RemoveCoupon())
	assert.Equal(t, StatePlanLoaded, o.State())
	assert.Equal(t, "200", o.DisplayTotal().String())
}

func TestPayFailsClosedWhenRecordCannotBeWritten(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore(), putErr: errors.New("disk on fire")}
	gateway := happyGateway()

	o := New(happyBackend(), gateway, store, WithKey("k1"))
	require.NoError(t, o.LoadPlan(ctx, "plan-1"))

	err := o.Pay(ctx, billing())
	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassTransient, fe.Class)

	// No approval URL may be handed out without a persisted record.
	assert.Equal(t, StateFailed, o.State())
}

func TestResumeWithoutRecordFails(t *testing.T) {
	ctx := context.Background()
	gateway := happyGateway()

	o := New(happyBackend(), gateway, NewMemoryStore(), WithKey("unknown"))
	_, err := o.Resume(ctx)

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassIntegrity, fe.Class)
	assert.Equal(t, "no pending order found", fe.Reason)
	assert.Equal(t, 0, gateway.captureCalls)
}

func TestResumeShortCircuitsCapturedOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k1", LocalOrderID: "order-1", GatewayOrderID: "pp-1"}))

	backend := happyBackend()
	backend.getOrderFn = func(_ context.Context, orderID string) (*orders.Order, error) {
		return &orders.Order{ID: orderID, Status: orders.StatusCaptured}, nil
	}
	gateway := happyGateway()

	o := New(backend, gateway, store, WithKey("k1"))
	outcome, err := o.Resume(ctx)

	require.NoError(t, err)
	assert.True(t, outcome.AlreadyCompleted)
	assert.Equal(t, StateCaptured, o.State())
	assert.Equal(t, 0, gateway.captureCalls, "capture must not run twice")

	rec, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestResumeDeclinedCaptureClearsRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k1", LocalOrderID: "order-1", GatewayOrderID: "pp-1"}))

	gateway := happyGateway()
	gateway.captureFn = func(_ context.Context, localOrderID, gatewayOrderID string) (*CaptureResult, error) {
		return &CaptureResult{Completed: false, ProviderStatus: "INSTRUMENT_DECLINED", Message: "the card was declined"}, nil
	}

	o := New(happyBackend(), gateway, store, WithKey("k1"))
	_, err := o.Resume(ctx)

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassTransient, fe.Class)
	assert.Equal(t, "the card was declined", fe.Reason)
	assert.Equal(t, StateFailed, o.State())
	assert.Equal(t, 1, gateway.captureCalls)

	rec, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, rec, "a failed attempt must not leave a replayable record")
}

func TestCancelClearsRecordWithoutCapture(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k1", LocalOrderID: "order-1", GatewayOrderID: "pp-1"}))
	gateway := happyGateway()

	o := New(happyBackend(), gateway, store, WithKey("k1"))
	require.NoError(t, o.Cancel(ctx))
	assert.Equal(t, StateCancelled, o.State())
	assert.Equal(t, 0, gateway.captureCalls)

	rec, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCancelWithoutRecordStillSucceeds(t *testing.T) {
	o := New(happyBackend(), happyGateway(), NewMemoryStore(), WithKey("gone"))
	require.NoError(t, o.Cancel(context.Background()))
	assert.Equal(t, StateCancelled, o.State())
}

func TestActionsRejectedInWrongState(t *testing.T) {
	ctx := context.Background()
	o := New(happyBackend(), happyGateway(), NewMemoryStore())

	// No plan loaded yet.
	err := o.Pay(ctx, billing())
	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassIntegrity, fe.Class)

	err = o.ApplyCoupon(ctx, "SAVE25")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassIntegrity, fe.Class)
}

func TestNoActionAcceptedAfterTerminalState(t *testing.T) {
	ctx := context.Background()
	gateway := happyGateway()

	o := New(happyBackend(), gateway, NewMemoryStore(), WithKey("k1"))
	require.NoError(t, o.Cancel(ctx))
	require.Equal(t, StateCancelled, o.State())

	var fe *FlowError
	require.ErrorAs(t, o.LoadPlan(ctx, "plan-1"), &fe)
	assert.Equal(t, ClassIntegrity, fe.Class)

	require.ErrorAs(t, o.Pay(ctx, billing()), &fe)
	assert.Equal(t, ClassIntegrity, fe.Class)

	_, err := o.Resume(ctx)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ClassIntegrity, fe.Class)

	require.ErrorAs(t, o.Cancel(ctx), &fe)
	assert.Equal(t, ClassIntegrity, fe.Class)

	// Terminal means terminal: nothing above moved the machine, and in
	// particular nothing re-entered the approval wait.
	assert.Equal(t, StateCancelled, o.State())
	assert.Equal(t, 0, gateway.createCalls)
	assert.Equal(t, 0, gateway.captureCalls)
}

func TestConcurrentActionDuringTransitionIsRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k1", LocalOrderID: "order-1", GatewayOrderID: "pp-1"}))

	entered := make(chan struct{})
	release := make(chan struct{})
	gateway := happyGateway()
	gateway.captureFn = func(_ context.Context, localOrderID, gatewayOrderID string) (*CaptureResult, error) {
		close(entered)
		<-release
		return &CaptureResult{Completed: true, CaptureID: "cap-1", ProviderStatus: "COMPLETED"}, nil
	}

	o := New(happyBackend(), gateway, store, WithKey("k1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := o.Resume(ctx)
		assert.NoError(t, err)
	}()

	// Second trigger arrives while the capture is still on the wire.
	<-entered
	err := o.Cancel(ctx)
	assert.ErrorIs(t, err, ErrTransitionInFlight)

	close(release)
	<-done

	assert.Equal(t, StateCaptured, o.State())
	assert.Equal(t, 1, gateway.captureCalls)
}

func TestNewAttemptOverwritesPendingRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k1", LocalOrderID: "stale", GatewayOrderID: "stale-pp"}))

	o := New(happyBackend(), happyGateway(), store, WithKey("k1"))
	require.NoError(t, o.LoadPlan(ctx, "plan-1"))
	require.NoError(t, o.Pay(ctx, billing()))

	rec, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "order-1", rec.LocalOrderID)
	assert.Equal(t, "pp-1", rec.GatewayOrderID)
}
