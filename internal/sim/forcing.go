package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// A ForcingFunc shapes a slowly varying ambient input. t is the time of day
// in fractional hours, amplitude the peak deviation from the base value,
// period the cycle length in hours.
type ForcingFunc func(t, amplitude, period float64) float64

var forcingFuncs = map[string]ForcingFunc{
	"daily_sine": dailySine,
	"sine":       sine,
	"flat":       flat,
}

// GetForcingFunc returns the waveform registered under name.
func GetForcingFunc(name string) (ForcingFunc, error) {
	f, ok := forcingFuncs[name]
	if !ok {
		return nil, fmt.Errorf("unknown forcing function %q", name)
	}
	return f, nil
}

// dailySine puts the trough a quarter period after t=0, so with a 24 h
// period the coldest point lands near 06:00 and the warmest near 18:00.
func dailySine(t, amplitude, period float64) float64 {
	return amplitude * math.Sin((t-period/2)*2*math.Pi/period)
}

func sine(t, amplitude, period float64) float64 {
	return amplitude * math.Sin(t*2*math.Pi/period)
}

func flat(_, _, _ float64) float64 {
	return 0
}

// walker is a bounded random walk stepped by elapsed time; rate is the
// maximum drift per second.
type walker struct {
	value float64
	min   float64
	max   float64
	rate  float64
}

func (w *walker) step(rng *rand.Rand, dt float64) float64 {
	w.value += (rng.Float64()*2 - 1) * w.rate * dt
	if w.value < w.min {
		w.value = w.min
	}
	if w.value > w.max {
		w.value = w.max
	}
	return w.value
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
