package sim

import (
	"math"
	"math/rand"
	"time"

	drive "drive_diagnostics"
)

const (
	baseAmbientC      = 25.0
	ambientAmplitudeC = 5.0
	ambientJitterC    = 1.0
	dailyPeriodHours  = 24.0

	humidityMin      = 30.0
	humidityMax      = 80.0
	humidityWalkRate = 2.0 // %/s

	powerQualityMin      = 95.0
	powerQualityMax      = 100.0
	powerQualityWalkRate = 0.5 // %/s

	dustAccrualRate = 1.0 // %/s upper bound of random accumulation
	vibrationFloor  = 0.1 // mm/s background level from the plant floor
)

// Environment models the conditions around the drive cabinet: ambient
// temperature following a daily cycle, humidity and supply power quality
// wandering inside fixed bands, and dust accumulating until a fan service
// resets it.
type Environment struct {
	AmbientTemperature float64
	Humidity           float64
	PowerQuality       float64
	DustLevel          float64
	VibrationFloor     float64

	wave     ForcingFunc
	humidity walker
	quality  walker
}

func NewEnvironment(wave ForcingFunc) *Environment {
	return &Environment{
		AmbientTemperature: baseAmbientC,
		Humidity:           50.0,
		PowerQuality:       100.0,
		VibrationFloor:     vibrationFloor,
		wave:               wave,
		humidity:           walker{value: 50.0, min: humidityMin, max: humidityMax, rate: humidityWalkRate},
		quality:            walker{value: 100.0, min: powerQualityMin, max: powerQualityMax, rate: powerQualityWalkRate},
	}
}

// Update advances the ambient state by dt seconds at wall-clock time now.
func (e *Environment) Update(now time.Time, dt float64, rng *rand.Rand) {
	hour := float64(now.Hour()) + float64(now.Minute())/60.0
	e.AmbientTemperature = baseAmbientC +
		e.wave(hour, ambientAmplitudeC, dailyPeriodHours) +
		uniform(rng, -ambientJitterC, ambientJitterC)
	e.Humidity = e.humidity.step(rng, dt)
	e.PowerQuality = e.quality.step(rng, dt)
	e.DustLevel = math.Min(100, e.DustLevel+rng.Float64()*dustAccrualRate*dt)
}

// ResetDust clears accumulated contamination, e.g. after a fan filter service.
func (e *Environment) ResetDust() {
	e.DustLevel = 0
}

func (e *Environment) snapshot() drive.EnvironmentSnapshot {
	return drive.EnvironmentSnapshot{
		AmbientTemperature: e.AmbientTemperature,
		Humidity:           e.Humidity,
		PowerQuality:       e.PowerQuality,
		DustLevel:          e.DustLevel,
		VibrationFloor:     e.VibrationFloor,
	}
}
