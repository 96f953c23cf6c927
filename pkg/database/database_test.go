package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolLimits(t *testing.T) {
	testCases := []struct {
		name       string
		open, idle int
		expectOpen int
		expectIdle int
	}{
		{
			name:       "configured limits are used",
			open:       25,
			idle:       8,
			expectOpen: 25,
			expectIdle: 8,
		},
		{
			name:       "unset limits fall back to defaults",
			open:       0,
			idle:       0,
			expectOpen: defaultMaxOpenConns,
			expectIdle: defaultMaxIdleConns,
		},
		{
			name:       "negative limits fall back to defaults",
			open:       -1,
			idle:       -1,
			expectOpen: defaultMaxOpenConns,
			expectIdle: defaultMaxIdleConns,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			open, idle := poolLimits(tc.open, tc.idle)
			assert.Equal(t, tc.expectOpen, open)
			assert.Equal(t, tc.expectIdle, idle)
		})
	}
}
