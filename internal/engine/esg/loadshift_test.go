// internal/engine/esg/loadshift_test.go
package esg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/common/weather"
)

func TestSuggestLoadShiftTiers(t *testing.T) {
	tests := []struct {
		name        string
		sunHours    float64
		wantSlot    string
		wantSavings float64
	}{
		{"sunny day", 6.5, "11:00-15:00", 0.15},
		{"partly cloudy", 4.0, "12:00-14:00", 0.08},
		{"overcast", 2.0, "22:00-06:00", 0.05},
		{"boundary five hours is moderate", 5.0, "12:00-14:00", 0.08},
		{"boundary three hours is low", 3.0, "22:00-06:00", 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := SuggestLoadShift(nil, &weather.Insight{SunHours: tt.sunHours})

			assert.Equal(t, []string{tt.wantSlot}, advice.BestTimeSlots)
			assert.Equal(t, tt.wantSavings, advice.PotentialSavings)
			require.Len(t, advice.Recommendations, 3, "one tiered plus two general recommendations")
			assert.Contains(t, advice.Recommendations[1], "smart plugs")
			assert.Contains(t, advice.Recommendations[2], "smart meters")
		})
	}
}

func TestSuggestLoadShiftWithoutWeather(t *testing.T) {
	advice := SuggestLoadShift(map[string]float64{"08:00": 1.2, "12:00": 3.4}, nil)

	// Average sun hours land in the moderate tier.
	assert.Equal(t, []string{"12:00-14:00"}, advice.BestTimeSlots)
	assert.Equal(t, 0.08, advice.PotentialSavings)
}
