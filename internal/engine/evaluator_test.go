package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsDueWindowBoundaries(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		resolved time.Time
		due      bool
	}{
		{"exactly now", now, true},
		{"thirty seconds ahead", now.Add(30 * time.Second), true},
		{"at the far edge of the window", now.Add(TriggerWindow), true},
		{"one second past the window", now.Add(TriggerWindow + time.Second), false},
		{"one second in the past", now.Add(-time.Second), false},
		{"an hour in the past", now.Add(-time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.due, IsDue(tc.resolved, now))
		})
	}
}
