package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		strategy  string
		rpm       int
		expectErr bool
		wantType  interface{}
	}{
		{name: "default strategy", strategy: "", rpm: 10, wantType: &Pacer{}},
		{name: "interval", strategy: "interval", rpm: 10, wantType: &Pacer{}},
		{name: "token bucket", strategy: "token_bucket", rpm: 10, wantType: &TokenBucket{}},
		{name: "unknown strategy", strategy: "sliding_window", rpm: 10, expectErr: true},
		{name: "zero rpm", strategy: "interval", rpm: 0, expectErr: true},
		{name: "negative rpm token bucket", strategy: "token_bucket", rpm: -3, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.strategy, tt.rpm)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, l)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, l)
			assert.Equal(t, tt.rpm, l.RPM())
		})
	}
}

func TestInterval(t *testing.T) {
	d, err := Interval(120)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	d, err = Interval(1)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	_, err = Interval(0)
	assert.ErrorIs(t, err, ErrInvalidRPM)
}
