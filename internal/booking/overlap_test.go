package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	testCases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		expected                   bool
	}{
		{"identical intervals", at(0), at(60), at(0), at(60), true},
		{"partial overlap", at(0), at(60), at(30), at(90), true},
		{"contained", at(0), at(120), at(30), at(60), true},
		{"touching end to start", at(0), at(60), at(60), at(120), false},
		{"disjoint", at(0), at(60), at(90), at(120), false},
		{"zero width inside", at(30), at(30), at(0), at(60), true},
		{"zero width at start boundary", at(0), at(0), at(0), at(60), false},
		{"zero width at end boundary", at(60), at(60), at(0), at(60), false},
		{"zero width outside", at(90), at(90), at(0), at(60), false},
		{"both zero width same instant", at(30), at(30), at(30), at(30), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			// Swapping the roles of the two intervals never changes the answer.
			assert.Equal(t, tc.expected, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd))
		})
	}
}
