package sim

import (
	"math"
	"math/rand"
)

const (
	systemFrequencyHz  = 50.0
	systemVoltageV     = 400.0
	systemLoadSlewRate = 5.0 // percentage points per second
	systemLoadDeadband = 2.0
)

// plantTargetLoad returns the commanded plant load for the given hour of
// day, with jitter so consecutive days differ. The shape follows a single
// production shift: ramp-up, morning run, lunch dip, afternoon run, wind
// down, night idle.
func plantTargetLoad(hour int, rng *rand.Rand) float64 {
	switch {
	case hour >= 6 && hour <= 8:
		return 30 + uniform(rng, -5, 5)
	case hour >= 9 && hour <= 12:
		return 85 + uniform(rng, -10, 5)
	case hour == 13:
		return 20 + uniform(rng, -5, 5)
	case hour >= 14 && hour <= 17:
		return 90 + uniform(rng, -5, 10)
	case hour == 18:
		return 40 + uniform(rng, -10, 5)
	default:
		return 10 + uniform(rng, -5, 5)
	}
}

// slewToward moves current toward target at most rate units per second,
// holding still while the gap is inside the deadband.
func slewToward(current, target, rate, deadband, dt float64) float64 {
	if math.Abs(target-current) <= deadband {
		return current
	}
	if target > current {
		return math.Min(target, current+rate*dt)
	}
	return math.Max(target, current-rate*dt)
}
