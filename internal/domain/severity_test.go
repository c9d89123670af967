package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSeverityStaysInRange(t *testing.T) {
	for ai := 0.0; ai <= 5.0; ai += 0.5 {
		for _, sentiment := range []float64{0, 0.33, 0.5, 1} {
			for _, kw := range []float64{0, 0.4, 0.8, 1} {
				for _, density := range []int{0, 1, 3, 5, 40} {
					got := ComputeSeverity(ai, sentiment, kw, density)
					require.GreaterOrEqual(t, got, 1)
					require.LessOrEqual(t, got, 5)
				}
			}
		}
	}
}

func TestComputeSeverityBounds(t *testing.T) {
	assert.Equal(t, 5, ComputeSeverity(5, 1, 1, 5))
	assert.Equal(t, 1, ComputeSeverity(0, 0, 0, 0))
}

func TestComputeSeverityRoundsUp(t *testing.T) {
	// raw = 0.4*(3/5) = 0.24 -> 1.2 -> 2
	assert.Equal(t, 2, ComputeSeverity(3, 0, 0, 0))
	// raw = 0.4 + 0.2 = 0.6 -> 3 exactly
	assert.Equal(t, 3, ComputeSeverity(5, 1, 0, 0))
	// raw = 0.6 + 0.25*4e-10, a hair above 3 once scaled
	assert.Equal(t, 4, ComputeSeverity(5, 1, 4e-10, 0))
	// density saturates at five neighbours
	assert.Equal(t, ComputeSeverity(0, 0, 0, 5), ComputeSeverity(0, 0, 0, 50))
}

func TestComputeSeverityClampsOutOfRangeInputs(t *testing.T) {
	assert.Equal(t, 5, ComputeSeverity(50, 3, 2, 10))
	assert.Equal(t, 1, ComputeSeverity(-2, -1, -1, -4))
}

func TestKeywordWeight(t *testing.T) {
	assert.GreaterOrEqual(t, KeywordWeight("there is an emergency, possible accident"), 0.8)
	assert.Equal(t, 0.0, KeywordWeight("nice day"))
	assert.InDelta(t, 0.4, KeywordWeight("FLOODING near the school"), 1e-9)
	assert.Equal(t, 1.0, KeywordWeight("emergency accident flooding blocking road"))
}

func TestSeverityFromLabel(t *testing.T) {
	cases := map[string]int{
		"Critical": 5,
		"High":     4,
		"Medium":   3,
		"Low":      2,
		"":         2,
		"unknown":  2,
	}
	for label, want := range cases {
		assert.Equal(t, want, SeverityFromLabel(label), label)
	}
}

func TestNearbyBox(t *testing.T) {
	box := NearbyBox(12.9716, 77.5946, DuplicateRadiusMeters)
	assert.True(t, box.Contains(12.9716, 77.5946))
	// ~100m north
	assert.True(t, box.Contains(12.9725, 77.5946))
	// ~5km east
	assert.False(t, box.Contains(12.9716, 77.6406))
	assert.InDelta(t, DuplicateRadiusMeters/111000, box.MaxLat-12.9716, 1e-9)
	assert.Greater(t, box.MaxLng-77.5946, box.MaxLat-12.9716)
}
