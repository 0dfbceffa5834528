package services

import "errors"

// CheckoutState is a step of the checkout saga.
type CheckoutState string

const (
	StateIdle            CheckoutState = "idle"
	StateValidatingUser  CheckoutState = "validating_user"
	StateFetchingAddress CheckoutState = "fetching_address"
	StateComputingTotal  CheckoutState = "computing_total"
	StateWritingOrder    CheckoutState = "writing_order"
	StateClearingCart    CheckoutState = "clearing_cart"
	StateNotifying       CheckoutState = "notifying"
	StateDone            CheckoutState = "done"
	StateAborted         CheckoutState = "aborted"
)

var ErrIllegalTransition = errors.New("illegal transition of checkout state")

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	StateIdle:            {StateValidatingUser},
	StateValidatingUser:  {StateFetchingAddress},
	StateFetchingAddress: {StateComputingTotal},
	StateComputingTotal:  {StateWritingOrder},
	StateWritingOrder:    {StateClearingCart},
	StateClearingCart:    {StateNotifying, StateDone},
	StateNotifying:       {StateDone},
}

func (s CheckoutState) IsTerminal() bool {
	return s == StateDone || s == StateAborted
}

func (s CheckoutState) String() string {
	return string(s)
}

// CanTransitionTo reports whether the saga may move from one state to the
// next. Any non-terminal state may abort.
func CanTransitionTo(from, to CheckoutState) bool {
	if to == StateAborted {
		return !from.IsTerminal()
	}
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
