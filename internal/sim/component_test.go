package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() *Environment {
	return NewEnvironment(flat)
}

func testComponent(t *testing.T, id string) (*Component, *rand.Rand) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	name := id
	for _, rc := range componentRoster {
		if rc.ID == id {
			name = rc.Name
		}
	}
	return newComponent(id, name, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), rng), rng
}

func TestLoadRampIsBounded(t *testing.T) {
	c, rng := testComponent(t, ComponentMotor)
	env := testEnv()

	c.update(1.0, env, 100, ProfileRealistic, rng)
	first := c.LoadPercentage
	assert.LessOrEqual(t, first, loadRampRate, "one second moves at most the ramp rate")
	assert.Greater(t, first, 0.0)

	prev := first
	for i := 0; i < 200; i++ {
		c.update(1.0, env, 100, ProfileRealistic, rng)
		require.LessOrEqual(t, c.LoadPercentage-prev, loadRampRate+1e-9)
		prev = c.LoadPercentage
	}
	target := 100 * c.Params.EfficiencyFactor
	assert.InDelta(t, target, c.LoadPercentage, loadRampDeadband+1e-9, "settles at the commanded point")
}

func TestThermalLag(t *testing.T) {
	c, _ := testComponent(t, ComponentMotor)
	env := testEnv()
	env.AmbientTemperature = baseAmbientC

	// Force full load immediately so the unit is running and hot-targeted
	// from the first instant.
	c.LoadPercentage = 100
	c.IsRunning = true

	// Ten 100ms ticks make one second of simulated time.
	for i := 0; i < 10; i++ {
		c.updateTemperature(0.1, env)
	}

	require.Greater(t, c.TargetTemperature, baseAmbientC)
	assert.Greater(t, c.Temperature, baseAmbientC, "temperature moved off ambient")
	assert.Less(t, c.Temperature, c.TargetTemperature, "no instantaneous jump to steady state")

	// After one second of a 300s time constant only a sliver of the gap
	// has closed.
	gap := c.TargetTemperature - baseAmbientC
	assert.Less(t, c.Temperature-baseAmbientC, gap*0.01)
}

func TestStoppedUnitCoolsToAmbientFloor(t *testing.T) {
	c, _ := testComponent(t, ComponentInverter)
	env := testEnv()
	env.AmbientTemperature = 25

	c.Temperature = 70
	c.IsRunning = false
	for i := 0; i < 5000; i++ {
		c.updateTemperature(1.0, env)
		require.GreaterOrEqual(t, c.Temperature, env.AmbientTemperature)
	}
	assert.InDelta(t, env.AmbientTemperature, c.Temperature, 0.1, "cools all the way down, never below ambient")
}

func TestVibrationFloorWhenStopped(t *testing.T) {
	c, rng := testComponent(t, ComponentFan)
	env := testEnv()
	c.IsRunning = false
	c.updateVibration(env, rng)
	assert.Equal(t, env.VibrationFloor, c.Vibration)
}

func TestElectricalQuantities(t *testing.T) {
	c, _ := testComponent(t, ComponentMotor)

	c.IsRunning = true
	c.LoadPercentage = 80
	c.Efficiency = 100
	c.updateElectrical()

	assert.InDelta(t, 40.0, c.Current, 1e-9, "draws 40A at 80 percent load and unit efficiency")
	assert.Equal(t, nominalVoltageV, c.Voltage)
	assert.Greater(t, c.Power, 0.0)

	lastEfficiency := c.Efficiency
	c.IsRunning = false
	c.updateElectrical()
	assert.Zero(t, c.Current)
	assert.Zero(t, c.Voltage)
	assert.Zero(t, c.Power)
	assert.Equal(t, lastEfficiency, c.Efficiency, "efficiency holds its last running value")
}

func TestDCLinkUsesItsOwnVoltage(t *testing.T) {
	c, _ := testComponent(t, ComponentDCLink)
	c.IsRunning = true
	c.LoadPercentage = 50
	c.updateElectrical()
	assert.Equal(t, dcLinkVoltageV, c.Voltage)
}

func TestBoundedInvariants(t *testing.T) {
	c, rng := testComponent(t, ComponentMotor)
	env := testEnv()
	env.DustLevel = 100
	env.Humidity = 80

	// Hours of full-load abuse in big steps.
	for i := 0; i < 20000; i++ {
		c.update(1.0, env, 100, ProfileRealistic, rng)

		require.GreaterOrEqual(t, c.HealthScore, 0.0)
		require.LessOrEqual(t, c.HealthScore, 100.0)
		require.GreaterOrEqual(t, c.Efficiency, 0.0)
		require.LessOrEqual(t, c.Efficiency, 100.0)
		require.GreaterOrEqual(t, c.LubricationLevel, 0.0)
		require.LessOrEqual(t, c.LubricationLevel, 100.0)
		require.GreaterOrEqual(t, c.Vibration, 0.0)
	}
	assert.Less(t, c.HealthScore, 100.0, "abuse leaves a mark")
	assert.True(t, c.MaintenanceDue)
}

func TestOperatingHoursOnlyWhileRunning(t *testing.T) {
	c, rng := testComponent(t, ComponentMotor)
	env := testEnv()

	for i := 0; i < 100; i++ {
		c.update(1.0, env, 0, ProfileRealistic, rng)
	}
	assert.Zero(t, c.OperatingHours, "idle unit accumulates nothing")

	for i := 0; i < 3600; i++ {
		c.update(1.0, env, 80, ProfileRealistic, rng)
	}
	assert.Greater(t, c.OperatingHours, 0.9, "about an hour of running time")
}

func TestStartStopCycleCounting(t *testing.T) {
	c, rng := testComponent(t, ComponentMotor)
	env := testEnv()

	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < 30; i++ {
			c.update(1.0, env, 80, ProfileRealistic, rng)
		}
		require.True(t, c.IsRunning)
		for i := 0; i < 60; i++ {
			c.update(1.0, env, 0, ProfileRealistic, rng)
		}
		require.False(t, c.IsRunning)
	}
	assert.Equal(t, 3, c.StartStopCycles)
}

func TestSimpleProfileSkipsWear(t *testing.T) {
	c, rng := testComponent(t, ComponentMotor)
	env := testEnv()

	for i := 0; i < 1000; i++ {
		c.update(1.0, env, 90, ProfileSimple, rng)
	}
	assert.Zero(t, c.FatigueLevel)
	assert.Zero(t, c.CorrosionLevel)
	assert.Equal(t, 100.0, c.LubricationLevel)
}

func TestMaintenanceDueLatches(t *testing.T) {
	c, _ := testComponent(t, ComponentMotor)

	c.FatigueLevel = 85
	c.checkMaintenanceDue()
	require.True(t, c.MaintenanceDue)

	// Even after the trigger condition subsides the flag stays up.
	c.FatigueLevel = 0
	c.checkMaintenanceDue()
	assert.True(t, c.MaintenanceDue, "only a service visit clears the flag")
}

func TestPerformMaintenance(t *testing.T) {
	c, _ := testComponent(t, ComponentMotor)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	c.FatigueLevel = 85
	c.HealthScore = 40
	c.CorrosionLevel = 30
	c.LubricationLevel = 10
	c.checkMaintenanceDue()
	require.True(t, c.MaintenanceDue)
	c.addFault("F30001", now)
	c.addAlarm("A05020", now)

	rec := c.performMaintenance(now)

	assert.Equal(t, 70.0, c.HealthScore)
	assert.Equal(t, 35.0, c.FatigueLevel)
	assert.Equal(t, 10.0, c.CorrosionLevel)
	assert.Equal(t, 100.0, c.LubricationLevel)
	assert.False(t, c.MaintenanceDue)
	assert.Empty(t, c.activeFaults)
	assert.Empty(t, c.activeAlarms)
	assert.Equal(t, now, c.LastMaintenance)
	assert.Equal(t, now.Add(maintenanceInterval), c.NextMaintenance)
	assert.Equal(t, ComponentMotor, rec.ComponentID)
	assert.Equal(t, now, rec.Last)
}

func TestActiveSetEdgeSemantics(t *testing.T) {
	c, _ := testComponent(t, ComponentMotor)
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	require.True(t, c.addFault("F30001", t0))
	assert.False(t, c.addFault("F30001", t1), "second add is a no-op")
	require.Len(t, c.activeFaults, 1)
	assert.Equal(t, t0, c.activeFaults[0].at, "first-seen timestamp survives the re-add")

	require.True(t, c.removeFault("F30001"))
	assert.False(t, c.removeFault("F30001"))
	assert.Empty(t, c.activeFaults)
}

func TestHistorySeries(t *testing.T) {
	var s series
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		s.add(t0.Add(time.Duration(i)*time.Second), float64(i))
	}

	tail := s.tail(5)
	require.Len(t, tail, 5)
	assert.Equal(t, 19.0, tail[4].Value)

	d, ok := s.recentDelta(10)
	require.True(t, ok)
	assert.InDelta(t, 9.0, d, 1e-9)

	_, ok = s.recentDelta(21)
	assert.False(t, ok, "not enough samples")

	s.prune(t0.Add(9 * time.Second))
	require.Len(t, s.points, 10)
	assert.Equal(t, 10.0, s.points[0].Value, "samples at or before the cutoff are gone")
}

func TestTrends(t *testing.T) {
	c, _ := testComponent(t, ComponentMotor)
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tr := c.trends()
	assert.Equal(t, "stable", tr.HealthTrend, "too few samples defaults to stable")
	assert.Equal(t, "stable", tr.TemperatureTrend)

	for i := 0; i < 15; i++ {
		ts := t0.Add(time.Duration(i) * time.Second)
		c.healthHistory.add(ts, 100-float64(i))
		c.tempHistory.add(ts, 25+float64(i))
	}

	tr = c.trends()
	assert.Equal(t, "declining", tr.HealthTrend)
	assert.Equal(t, "rising", tr.TemperatureTrend)
	assert.InDelta(t, -9.0, tr.HealthChangeRate, 1e-9)
	assert.InDelta(t, 9.0, tr.TemperatureChangeRate, 1e-9)
}

func TestComponentStatusCounts(t *testing.T) {
	c, _ := testComponent(t, ComponentMotor)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	c.addFault("F30001", now)
	c.addAlarm("A05020", now)
	c.addAlarm("A05060", now)

	st := c.status(now.Add(48 * time.Hour))
	assert.Equal(t, 1, st.FaultCount)
	assert.Equal(t, 2, st.AlarmCount)
	assert.Equal(t, 2, st.DaysSinceMaintenance)
	assert.Equal(t, 28, st.NextMaintenanceDays)
}
