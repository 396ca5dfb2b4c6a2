package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetForcingFunc(t *testing.T) {
	for _, name := range []string{"daily_sine", "sine", "flat"} {
		t.Run(name, func(t *testing.T) {
			f, err := GetForcingFunc(name)
			require.NoError(t, err)
			require.NotNil(t, f)
		})
	}

	_, err := GetForcingFunc("square")
	assert.Error(t, err)
}

func TestDailySineShape(t *testing.T) {
	assert.InDelta(t, -5.0, dailySine(6, 5, 24), 1e-9, "trough at hour 6")
	assert.InDelta(t, 5.0, dailySine(18, 5, 24), 1e-9, "peak at hour 18")
	assert.InDelta(t, 0.0, dailySine(12, 5, 24), 1e-9, "mean crossing at noon")
}

func TestWalkerStaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := walker{value: 50, min: 30, max: 80, rate: 5}
	for i := 0; i < 10000; i++ {
		v := w.step(rng, 1.0)
		require.GreaterOrEqual(t, v, 30.0)
		require.LessOrEqual(t, v, 80.0)
	}
}

func TestEnvironmentUpdate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	env := NewEnvironment(flat)
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	prevDust := env.DustLevel
	for i := 0; i < 1000; i++ {
		env.Update(now.Add(time.Duration(i)*time.Second), 1.0, rng)

		assert.InDelta(t, baseAmbientC, env.AmbientTemperature, ambientJitterC+1e-9)
		assert.GreaterOrEqual(t, env.Humidity, humidityMin)
		assert.LessOrEqual(t, env.Humidity, humidityMax)
		assert.GreaterOrEqual(t, env.PowerQuality, powerQualityMin)
		assert.LessOrEqual(t, env.PowerQuality, powerQualityMax)

		require.GreaterOrEqual(t, env.DustLevel, prevDust, "dust never decreases on its own")
		require.LessOrEqual(t, env.DustLevel, 100.0)
		prevDust = env.DustLevel
	}
	assert.Greater(t, env.DustLevel, 0.0, "dust accumulates over time")

	env.ResetDust()
	assert.Zero(t, env.DustLevel)
}

func TestEnvironmentDailyCycle(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	env := NewEnvironment(dailySine)

	morning := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	env.Update(morning, 0.1, rng)
	coldest := env.AmbientTemperature
	env.Update(evening, 0.1, rng)
	warmest := env.AmbientTemperature

	assert.InDelta(t, baseAmbientC-ambientAmplitudeC, coldest, ambientJitterC+1e-9)
	assert.InDelta(t, baseAmbientC+ambientAmplitudeC, warmest, ambientJitterC+1e-9)
	assert.Greater(t, warmest, coldest)
}
