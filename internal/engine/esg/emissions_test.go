// internal/engine/esg/emissions_test.go
package esg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateEmissionsScope2(t *testing.T) {
	est, err := EstimateEmissions(3000, 0.42, false)
	require.NoError(t, err)

	assert.Equal(t, 1.260, est.TCO2e)
	assert.Equal(t, 1.260, est.Scope2)
	assert.Nil(t, est.Scope3)
	assert.Equal(t, map[string]float64{"electricity_scope2": 1.260}, est.Breakdown)
	assert.Equal(t, "Calculated using grid emission factor 0.42 kg CO2/kWh (Germany average)", est.Note)
}

func TestEstimateEmissionsWithScope3(t *testing.T) {
	est, err := EstimateEmissions(3000, 0.42, true)
	require.NoError(t, err)

	require.NotNil(t, est.Scope3)
	assert.Equal(t, 0.189, *est.Scope3)
	assert.Equal(t, 1.449, est.TCO2e)
	assert.Equal(t, 0.189, est.Breakdown["upstream_scope3"])
}

func TestEstimateEmissionsRounding(t *testing.T) {
	// 1234 kWh * 0.42 / 1000 = 0.51828, rounded to three decimals.
	est, err := EstimateEmissions(1234, 0.42, false)
	require.NoError(t, err)
	assert.Equal(t, 0.518, est.Scope2)
}

func TestEstimateEmissionsCustomFactor(t *testing.T) {
	est, err := EstimateEmissions(1000, 0.25, false)
	require.NoError(t, err)

	assert.Equal(t, 0.25, est.TCO2e)
	assert.Equal(t, "Calculated using grid emission factor 0.25 kg CO2/kWh", est.Note)
}

func TestEstimateEmissionsDefaultsFactor(t *testing.T) {
	est, err := EstimateEmissions(1000, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0.42, est.TCO2e)
}

func TestEstimateEmissionsRejectsNonPositiveConsumption(t *testing.T) {
	for _, kWh := range []float64{0, -50} {
		_, err := EstimateEmissions(kWh, 0.42, false)
		require.Error(t, err, "kWh=%v", kWh)
		assert.Contains(t, err.Error(), "BUSINESS_RULE_VIOLATION")
	}
}
