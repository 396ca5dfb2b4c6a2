package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluatorFixture(t *testing.T) (*Evaluator, map[string]*Component) {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	components := make(map[string]*Component, len(componentRoster))
	for _, rc := range componentRoster {
		components[rc.ID] = newComponent(rc.ID, rc.Name, now, rng)
	}
	return NewEvaluator(), components
}

func TestRecomputeHealthyStateIsQuiet(t *testing.T) {
	e, components := evaluatorFixture(t)
	now := time.Now()

	trs := e.Recompute(now, components)
	assert.Empty(t, trs)
	for _, c := range components {
		assert.Empty(t, c.activeFaults)
		assert.Empty(t, c.activeAlarms)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	e, components := evaluatorFixture(t)
	motor := components[ComponentMotor]
	motor.Temperature = 80 // above both A05020 (65) and F30002 (75)
	now := time.Now()

	first := e.Recompute(now, components)
	require.NotEmpty(t, first)
	require.True(t, motor.hasFault("F30002"))
	require.True(t, motor.hasAlarm("A05020"))
	faults := len(motor.activeFaults)
	alarms := len(motor.activeAlarms)

	second := e.Recompute(now.Add(time.Second), components)
	assert.Empty(t, second, "unchanged state yields no transitions")
	assert.Len(t, motor.activeFaults, faults)
	assert.Len(t, motor.activeAlarms, alarms)
}

func TestEdgeTriggeredOscillation(t *testing.T) {
	e, components := evaluatorFixture(t)
	motor := components[ComponentMotor]
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	const cycles = 5
	appeared, cleared := 0, 0
	for i := 0; i < cycles; i++ {
		motor.Temperature = 80
		for _, tr := range e.Recompute(now, components) {
			if tr.ID == "F30002" && tr.Appeared {
				appeared++
			}
		}
		require.True(t, motor.hasFault("F30002"))
		require.Len(t, motor.activeFaults, 1, "never accumulates duplicates")
		now = now.Add(time.Second)

		motor.Temperature = 60
		for _, tr := range e.Recompute(now, components) {
			if tr.ID == "F30002" && !tr.Appeared {
				cleared++
			}
		}
		require.False(t, motor.hasFault("F30002"))
		now = now.Add(time.Second)
	}
	assert.Equal(t, cycles, appeared)
	assert.Equal(t, cycles, cleared)
}

func TestFirstSeenTimestampStable(t *testing.T) {
	e, components := evaluatorFixture(t)
	motor := components[ComponentMotor]
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	motor.Temperature = 80
	e.Recompute(t0, components)
	require.True(t, motor.hasFault("F30002"))
	firstSeen := motor.activeFaults[0].at

	for i := 1; i <= 10; i++ {
		e.Recompute(t0.Add(time.Duration(i)*time.Second), components)
	}
	require.True(t, motor.hasFault("F30002"))
	assert.Equal(t, firstSeen, motor.activeFaults[0].at)
}

func TestInjectedEntrySurvivesEvaluation(t *testing.T) {
	e, components := evaluatorFixture(t)
	motor := components[ComponentMotor]
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// Current is zero, so the overcurrent condition never held. An entry
	// placed there by hand must not be swept away.
	motor.addFault("F30001", t0)
	for i := 0; i < 20; i++ {
		e.Recompute(t0.Add(time.Duration(i)*time.Second), components)
	}
	assert.True(t, motor.hasFault("F30001"))
}

func TestClearedConditionRederivesAfterReset(t *testing.T) {
	e, components := evaluatorFixture(t)
	motor := components[ComponentMotor]
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	motor.Temperature = 80
	e.Recompute(t0, components)
	require.True(t, motor.hasFault("F30002"))

	// An operator acknowledges and clears, but the condition still holds.
	motor.activeFaults = motor.activeFaults[:0]
	e.ResetFaults()

	trs := e.Recompute(t0.Add(time.Second), components)
	require.True(t, motor.hasFault("F30002"), "persisting condition re-enters after a clear")
	var reAppeared bool
	for _, tr := range trs {
		if tr.ID == "F30002" && tr.Appeared {
			reAppeared = true
		}
	}
	assert.True(t, reAppeared)
}

func TestRunningOnlyGate(t *testing.T) {
	e, components := evaluatorFixture(t)
	dcLink := components[ComponentDCLink]
	now := time.Now()

	// A stopped DC link reads 0V, which is not an undervoltage condition.
	dcLink.IsRunning = false
	dcLink.Voltage = 0
	e.Recompute(now, components)
	assert.False(t, dcLink.hasFault("F30021"))

	dcLink.IsRunning = true
	dcLink.Voltage = 300
	e.Recompute(now.Add(time.Second), components)
	assert.True(t, dcLink.hasFault("F30021"))
}

func TestMaintenanceDueAlarmBinding(t *testing.T) {
	e, components := evaluatorFixture(t)
	cu := components[ComponentCU320]
	now := time.Now()

	e.Recompute(now, components)
	require.False(t, cu.hasAlarm("A05070"))

	cu.MaintenanceDue = true
	e.Recompute(now.Add(time.Second), components)
	assert.True(t, cu.hasAlarm("A05070"))

	cu.MaintenanceDue = false
	e.Recompute(now.Add(2*time.Second), components)
	assert.False(t, cu.hasAlarm("A05070"))
}

func TestEfficiencyAlarmOnlyWhileRunning(t *testing.T) {
	e, components := evaluatorFixture(t)
	cu := components[ComponentCU320]
	now := time.Now()

	cu.Efficiency = 70
	cu.IsRunning = false
	e.Recompute(now, components)
	assert.False(t, cu.hasAlarm("A05080"), "a stopped unit is not inefficient")

	cu.IsRunning = true
	e.Recompute(now.Add(time.Second), components)
	assert.True(t, cu.hasAlarm("A05080"))
}

func TestResetComponentForgetsOnlyItsBindings(t *testing.T) {
	e, components := evaluatorFixture(t)
	motor := components[ComponentMotor]
	inverter := components[ComponentInverter]
	now := time.Now()

	motor.Temperature = 80
	inverter.Current = 55
	e.Recompute(now, components)
	require.True(t, motor.hasFault("F30002"))
	require.True(t, inverter.hasFault("F30012"))

	motor.activeFaults = motor.activeFaults[:0]
	motor.activeAlarms = motor.activeAlarms[:0]
	e.ResetComponent(ComponentMotor)

	e.Recompute(now.Add(time.Second), components)
	assert.True(t, motor.hasFault("F30002"), "motor bindings re-derive")
	require.Len(t, inverter.activeFaults, 1, "inverter state untouched")
}

func TestCatalogConsistency(t *testing.T) {
	ids := map[string]bool{}
	roster := map[string]bool{}
	for _, rc := range componentRoster {
		roster[rc.ID] = true
	}
	for _, def := range faultCatalog {
		assert.False(t, ids[def.ID], "duplicate id %s", def.ID)
		ids[def.ID] = true
		assert.True(t, roster[def.Component], "%s names unknown component %s", def.ID, def.Component)
		assert.NotEmpty(t, def.Description)
		assert.NotEmpty(t, def.Severity)
	}
	for _, def := range alarmCatalog {
		assert.False(t, ids[def.ID], "duplicate id %s", def.ID)
		ids[def.ID] = true
		assert.True(t, roster[def.Component], "%s names unknown component %s", def.ID, def.Component)
		assert.NotEmpty(t, def.Description)
		assert.NotEmpty(t, def.Severity)
	}
	assert.Len(t, faultByID, len(faultCatalog))
	assert.Len(t, alarmByID, len(alarmCatalog))
}
