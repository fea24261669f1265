package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChargingState(t *testing.T) {
	tests := []struct {
		raw  string
		want ChargingStateKind
		name string
	}{
		{"A", StateAvailable, "Available"},
		{"B", StateConnected, "Connected"},
		{"B_AUTH", StateConnectedNeedAuth, "Connected,NeedAuth"},
		{"B_PAUSE", StateConnectedPaused, "Connected,Paused"},
		{"C", StateCharging, "Charging"},
		{"D", StateCharging, "Charging"},
		{"E", StateError, "Error"},
		{"F", StateError, "Error"},
		{"OTA", StateUpdatingFirmware, "Updating firmware"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s := ParseChargingState(tt.raw)
			assert.Equal(t, tt.want, s.Kind)
			assert.Equal(t, tt.raw, s.Raw)
			assert.True(t, s.Known())
			assert.Equal(t, tt.name, s.String())
			// pure: same input, same output
			assert.Equal(t, s, ParseChargingState(tt.raw))
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		for _, raw := range []string{"", "LOCKED", "a", "B_SCHEDULER", "Z9"} {
			s := ParseChargingState(raw)
			assert.Equal(t, StateUnknown, s.Kind, raw)
			assert.False(t, s.Known(), raw)
			assert.Equal(t, raw, s.String(), "unknown codes pass through verbatim")
		}
	})
}

func TestLimitReasonFromIndex(t *testing.T) {
	want := []string{
		"No limit",
		"Installation current",
		"User limit",
		"Dynamic limit",
		"Schedule",
		"Em offline",
		"Em",
		"Ocpp",
	}
	for i, label := range want {
		r, err := LimitReasonFromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, LimitReason(i), r)
		assert.Equal(t, label, r.String())
	}
	assert.Equal(t, LimitReasonOCPP, LimitReason(7))

	for _, i := range []int{-1, 8, 100} {
		_, err := LimitReasonFromIndex(i)
		assert.Error(t, err, "index %d should be rejected", i)
	}
}

func TestLoadBalancingMode(t *testing.T) {
	assert.True(t, LoadBalancingOff.Valid())
	assert.True(t, LoadBalancingGreen.Valid())
	assert.False(t, LoadBalancingMode(4).Valid())
	assert.False(t, LoadBalancingMode(-1).Valid())
	assert.Equal(t, "Hybrid", LoadBalancingHybrid.String())
	assert.Equal(t, "LoadBalancingMode(9)", LoadBalancingMode(9).String())
}
