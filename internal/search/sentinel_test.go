package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinel_RebindTearsDownPreviousObservation(t *testing.T) {
	var s Sentinel
	var firstCancelled, secondCancelled int

	s.Rebind(func() func() {
		return func() { firstCancelled++ }
	})
	assert.Equal(t, 0, firstCancelled)

	s.Rebind(func() func() {
		return func() { secondCancelled++ }
	})
	assert.Equal(t, 1, firstCancelled)
	assert.Equal(t, 0, secondCancelled)

	s.Disconnect()
	assert.Equal(t, 1, firstCancelled)
	assert.Equal(t, 1, secondCancelled)
}

func TestSentinel_DisconnectIsIdempotent(t *testing.T) {
	var s Sentinel
	var cancelled int

	s.Rebind(func() func() {
		return func() { cancelled++ }
	})

	s.Disconnect()
	s.Disconnect()

	assert.Equal(t, 1, cancelled)
}

func TestSentinel_DisconnectWithoutObservation(t *testing.T) {
	var s Sentinel
	assert.NotPanics(t, func() { s.Disconnect() })
}
