package checkout

// State is the checkout attempt's position in the flow. AwaitingApproval is
// the one state that spans the redirect to the gateway: the in-memory
// orchestrator is gone by the time the learner comes back, and a fresh
// instance rebuilds its position from the persisted correlation record.
type State string

const (
	StateIdle                 State = "idle"
	StatePlanLoaded           State = "plan_loaded"
	StateCouponPending        State = "coupon_pending"
	StateCouponApplied        State = "coupon_applied"
	StateCouponRejected       State = "coupon_rejected"
	StateOrderCreating        State = "order_creating"
	StateOrderCreated         State = "order_created"
	StateGatewayOrderCreating State = "gateway_order_creating"
	StateAwaitingApproval     State = "awaiting_approval"
	StateCapturing            State = "capturing"
	StateCaptured             State = "captured"
	StateFailed               State = "failed"
	StateCancelled            State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateCaptured || s == StateFailed || s == StateCancelled
}

func (s State) String() string {
	return string(s)
}
