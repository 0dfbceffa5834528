package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storecart/internal/services"
)

func TestCheckoutTransitions(t *testing.T) {
	path := []services.CheckoutState{
		services.StateIdle,
		services.StateValidatingUser,
		services.StateFetchingAddress,
		services.StateComputingTotal,
		services.StateWritingOrder,
		services.StateClearingCart,
		services.StateNotifying,
		services.StateDone,
	}
	for i := 0; i+1 < len(path); i++ {
		assert.True(t, services.CanTransitionTo(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
	for _, s := range path[:len(path)-1] {
		assert.False(t, s.IsTerminal(), s.String())
		assert.True(t, services.CanTransitionTo(s, services.StateAborted), "%s -> aborted", s)
	}

	assert.True(t, services.CanTransitionTo(services.StateClearingCart, services.StateDone))
	assert.False(t, services.CanTransitionTo(services.StateIdle, services.StateWritingOrder))
	assert.False(t, services.CanTransitionTo(services.StateWritingOrder, services.StateComputingTotal))
	assert.False(t, services.CanTransitionTo(services.StateDone, services.StateAborted))
	assert.False(t, services.CanTransitionTo(services.StateAborted, services.StateIdle))
	assert.True(t, services.StateDone.IsTerminal())
	assert.True(t, services.StateAborted.IsTerminal())
}
