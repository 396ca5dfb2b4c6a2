package sim

import (
	"math"
	"math/rand"
	"time"

	drive "drive_diagnostics"
)

// Component ids of the drive line-up.
const (
	ComponentRectifier = "rectifier"
	ComponentDCLink    = "dc_link"
	ComponentInverter  = "inverter"
	ComponentMotor     = "motor"
	ComponentFan       = "fan"
	ComponentCU320     = "cu320"
)

// componentRoster is the fixed line-up in power-flow order. Iteration over
// components always follows this order so snapshots stay deterministic.
var componentRoster = []struct {
	ID   string
	Name string
}{
	{ComponentRectifier, "Rectifier"},
	{ComponentDCLink, "DC Link"},
	{ComponentInverter, "Inverter"},
	{ComponentMotor, "Motor"},
	{ComponentFan, "Fan"},
	{ComponentCU320, "CU320-2 PN"},
}

const (
	loadRampRate     = 2.0 // pp/s toward the commanded load
	loadRampDeadband = 1.0
	runningThreshold = 5.0 // % load above which a unit counts as running

	heatLoadGain        = 50.0
	heatEfficiencyGain  = 20.0
	heatFatigueGain     = 10.0
	thermalTimeConstant = 300.0 // seconds
	stoppedCoolingRate  = 0.02  // fraction of the gap to ambient per second

	vibrationLoadGain    = 3.0
	vibrationHealthGain  = 5.0
	vibrationFatigueGain = 3.0
	vibrationJitter      = 0.5

	ratedCurrentA       = 50.0
	minEfficiencyFactor = 0.01 // divisor floor so current stays finite
	nominalVoltageV     = 400.0
	dcLinkVoltageV      = 540.0

	healthGainPerSec = 0.5
	tempComfortKnee  = 60.0
	tempComfortSpan  = 40.0
	vibComfortKnee   = 5.0
	vibComfortSpan   = 15.0
	loadComfortKnee  = 80.0
	loadComfortSpan  = 20.0
	dustComfortKnee  = 50.0
	dustComfortSpan  = 50.0

	fatigueRate     = 0.01  // per second at full load, scaled by wear rate
	corrosionRate   = 0.001 // per second, scaled by temperature and humidity
	lubricationRate = 0.01  // per second at full load

	fatigueDueThreshold     = 80.0
	corrosionDueThreshold   = 50.0
	lubricationDueThreshold = 20.0
	healthDueThreshold      = 30.0

	maintenanceInterval = 30 * 24 * time.Hour

	maintenanceHealthBoost   = 30.0
	maintenanceFatigueRelief = 50.0
	maintenanceCorrosionCut  = 20.0
)

// Profile selects the model fidelity. The simple profile skips the slow
// degradation channels so long demo runs keep components healthy.
type Profile string

const (
	ProfileSimple    Profile = "simple"
	ProfileRealistic Profile = "realistic"
)

// ComponentParams are the randomized per-unit physical characteristics,
// drawn once at construction so the six components age differently.
type ComponentParams struct {
	ThermalMass      float64
	HeatCapacity     float64
	EfficiencyFactor float64
	WearRate         float64
	NominalVoltage   float64
}

func newComponentParams(id string, rng *rand.Rand) ComponentParams {
	p := ComponentParams{
		ThermalMass:      uniform(rng, 0.8, 1.2),
		HeatCapacity:     uniform(rng, 0.9, 1.1),
		EfficiencyFactor: uniform(rng, 0.95, 1.0),
		WearRate:         uniform(rng, 0.8, 1.2),
		NominalVoltage:   nominalVoltageV,
	}
	if id == ComponentDCLink {
		p.NominalVoltage = dcLinkVoltageV
	}
	return p
}

// activeEntry is one member of a component's active fault or alarm set. The
// timestamp is the first trigger time and stays stable while the condition
// holds.
type activeEntry struct {
	id string
	at time.Time
}

func hasEntry(entries []activeEntry, id string) bool {
	for _, e := range entries {
		if e.id == id {
			return true
		}
	}
	return false
}

func addEntry(entries []activeEntry, id string, at time.Time) ([]activeEntry, bool) {
	if hasEntry(entries, id) {
		return entries, false
	}
	return append(entries, activeEntry{id: id, at: at}), true
}

func removeEntry(entries []activeEntry, id string) ([]activeEntry, bool) {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i], entries[i+1:]...), true
		}
	}
	return entries, false
}

// Component holds the continuous physics and discrete diagnostic state of
// one drive component.
type Component struct {
	ID     string
	Name   string
	Params ComponentParams

	Temperature       float64
	TargetTemperature float64
	Vibration         float64
	Current           float64
	Voltage           float64
	Power             float64
	Efficiency        float64

	LoadPercentage  float64
	IsRunning       bool
	OperatingHours  float64
	StartStopCycles int

	HealthScore      float64
	FatigueLevel     float64
	CorrosionLevel   float64
	LubricationLevel float64

	activeFaults []activeEntry
	activeAlarms []activeEntry

	MaintenanceDue  bool
	LastMaintenance time.Time
	NextMaintenance time.Time

	tempHistory   series
	vibHistory    series
	healthHistory series
	effHistory    series
}

func newComponent(id, name string, now time.Time, rng *rand.Rand) *Component {
	return &Component{
		ID:                id,
		Name:              name,
		Params:            newComponentParams(id, rng),
		Temperature:       baseAmbientC,
		TargetTemperature: baseAmbientC,
		Efficiency:        100,
		HealthScore:       100,
		LubricationLevel:  100,
		LastMaintenance:   now,
		NextMaintenance:   now.Add(maintenanceInterval),
	}
}

// update advances the physics by dt seconds against the current environment
// and the plant-level commanded load.
func (c *Component) update(dt float64, env *Environment, commandedLoad float64, profile Profile, rng *rand.Rand) {
	c.updateLoad(dt, commandedLoad)
	if c.IsRunning {
		c.OperatingHours += dt / 3600.0
	}
	c.updateTemperature(dt, env)
	c.updateVibration(env, rng)
	c.updateElectrical()
	c.updateHealth(dt, env)
	if profile == ProfileRealistic {
		c.updateWear(dt, env)
	}
	c.checkMaintenanceDue()
}

func (c *Component) updateLoad(dt float64, commandedLoad float64) {
	target := commandedLoad * c.Params.EfficiencyFactor
	c.LoadPercentage = slewToward(c.LoadPercentage, target, loadRampRate, loadRampDeadband, dt)
	running := c.LoadPercentage > runningThreshold
	if running != c.IsRunning {
		if running {
			c.StartStopCycles++
		}
		c.IsRunning = running
	}
}

// updateTemperature relaxes toward a load-dependent equilibrium with a fixed
// time constant. A stopped unit cools toward ambient and never below it.
func (c *Component) updateTemperature(dt float64, env *Environment) {
	if c.IsRunning {
		heat := math.Pow(c.LoadPercentage/100, 1.5)*heatLoadGain +
			(100-c.Efficiency)/100*heatEfficiencyGain +
			c.FatigueLevel/100*heatFatigueGain
		c.TargetTemperature = env.AmbientTemperature + heat/(c.Params.ThermalMass*c.Params.HeatCapacity)
		c.Temperature += (c.TargetTemperature - c.Temperature) / thermalTimeConstant * dt
		return
	}
	drop := (c.Temperature - env.AmbientTemperature) * stoppedCoolingRate * dt
	c.Temperature = math.Max(env.AmbientTemperature, c.Temperature-drop)
}

func (c *Component) updateVibration(env *Environment, rng *rand.Rand) {
	if !c.IsRunning {
		c.Vibration = env.VibrationFloor
		return
	}
	v := c.LoadPercentage/100*vibrationLoadGain +
		(100-c.HealthScore)/100*vibrationHealthGain +
		c.FatigueLevel/100*vibrationFatigueGain +
		env.VibrationFloor +
		uniform(rng, -vibrationJitter, vibrationJitter)
	c.Vibration = math.Max(0, v)
}

// updateElectrical derives current from load using the efficiency of the
// previous tick, then refreshes efficiency from health and fatigue. A
// stopped unit draws nothing but keeps its last efficiency figure.
func (c *Component) updateElectrical() {
	if !c.IsRunning {
		c.Current, c.Voltage, c.Power = 0, 0, 0
		return
	}
	eff := math.Max(c.Efficiency/100, minEfficiencyFactor)
	c.Current = (c.LoadPercentage / 100 * ratedCurrentA) / eff
	c.Voltage = c.Params.NominalVoltage
	c.Power = c.Current * c.Voltage * math.Sqrt(3) / 1000
	c.Efficiency = clamp(100*(c.HealthScore/100)*(1-c.FatigueLevel/100*0.1), 0, 100)
}

func comfortFactor(v, knee, span float64) float64 {
	if v <= knee {
		return 1
	}
	return math.Max(0, 1-(v-knee)/span)
}

// updateHealth drifts the health score by how far the operating point sits
// outside the comfort region across temperature, vibration, load and dust.
// At full comfort the average factor is 1 and health holds steady.
func (c *Component) updateHealth(dt float64, env *Environment) {
	avg := (comfortFactor(c.Temperature, tempComfortKnee, tempComfortSpan) +
		comfortFactor(c.Vibration, vibComfortKnee, vibComfortSpan) +
		comfortFactor(c.LoadPercentage, loadComfortKnee, loadComfortSpan) +
		comfortFactor(env.DustLevel, dustComfortKnee, dustComfortSpan)) / 4
	c.HealthScore = clamp(c.HealthScore+(avg-1)*healthGainPerSec*dt, 0, 100)
}

func (c *Component) updateWear(dt float64, env *Environment) {
	if !c.IsRunning {
		return
	}
	c.FatigueLevel += math.Pow(c.LoadPercentage/100, 2) * fatigueRate * c.Params.WearRate * dt
	c.CorrosionLevel += corrosionRate * (c.Temperature / 50) * (env.Humidity / 50) * dt
	c.LubricationLevel = math.Max(0, c.LubricationLevel-lubricationRate*(c.LoadPercentage/100)*dt)
}

// checkMaintenanceDue latches the due flag once any wear channel crosses its
// threshold. Only a service visit clears it.
func (c *Component) checkMaintenanceDue() {
	if c.FatigueLevel > fatigueDueThreshold ||
		c.CorrosionLevel > corrosionDueThreshold ||
		c.LubricationLevel < lubricationDueThreshold ||
		c.HealthScore < healthDueThreshold {
		c.MaintenanceDue = true
	}
}

// performMaintenance applies a service visit: partial recovery of the wear
// channels, full relubrication, and both active sets wiped.
func (c *Component) performMaintenance(now time.Time) drive.MaintenanceRecord {
	c.HealthScore = math.Min(100, c.HealthScore+maintenanceHealthBoost)
	c.FatigueLevel = math.Max(0, c.FatigueLevel-maintenanceFatigueRelief)
	c.CorrosionLevel = math.Max(0, c.CorrosionLevel-maintenanceCorrosionCut)
	c.LubricationLevel = 100
	c.MaintenanceDue = false
	c.activeFaults = c.activeFaults[:0]
	c.activeAlarms = c.activeAlarms[:0]
	c.LastMaintenance = now
	c.NextMaintenance = now.Add(maintenanceInterval)
	return drive.MaintenanceRecord{ComponentID: c.ID, Last: c.LastMaintenance, Next: c.NextMaintenance}
}

func (c *Component) hasFault(id string) bool { return hasEntry(c.activeFaults, id) }
func (c *Component) hasAlarm(id string) bool { return hasEntry(c.activeAlarms, id) }

func (c *Component) addFault(id string, at time.Time) bool {
	var added bool
	c.activeFaults, added = addEntry(c.activeFaults, id, at)
	return added
}

func (c *Component) addAlarm(id string, at time.Time) bool {
	var added bool
	c.activeAlarms, added = addEntry(c.activeAlarms, id, at)
	return added
}

func (c *Component) removeFault(id string) bool {
	var removed bool
	c.activeFaults, removed = removeEntry(c.activeFaults, id)
	return removed
}

func (c *Component) removeAlarm(id string) bool {
	var removed bool
	c.activeAlarms, removed = removeEntry(c.activeAlarms, id)
	return removed
}

func (c *Component) recordHistory(now time.Time) {
	c.tempHistory.add(now, c.Temperature)
	c.vibHistory.add(now, c.Vibration)
	c.healthHistory.add(now, c.HealthScore)
	c.effHistory.add(now, c.Efficiency)
}

func (c *Component) pruneHistory(cutoff time.Time) {
	c.tempHistory.prune(cutoff)
	c.vibHistory.prune(cutoff)
	c.healthHistory.prune(cutoff)
	c.effHistory.prune(cutoff)
}

func (c *Component) status(now time.Time) drive.ComponentStatus {
	return drive.ComponentStatus{
		ComponentID:          c.ID,
		ComponentName:        c.Name,
		HealthScore:          c.HealthScore,
		Temperature:          c.Temperature,
		Vibration:            c.Vibration,
		Current:              c.Current,
		Voltage:              c.Voltage,
		Power:                c.Power,
		Efficiency:           c.Efficiency,
		LoadPercentage:       c.LoadPercentage,
		IsRunning:            c.IsRunning,
		OperatingHours:       c.OperatingHours,
		StartStopCycles:      c.StartStopCycles,
		FatigueLevel:         c.FatigueLevel,
		CorrosionLevel:       c.CorrosionLevel,
		LubricationLevel:     c.LubricationLevel,
		FaultCount:           len(c.activeFaults),
		AlarmCount:           len(c.activeAlarms),
		MaintenanceDue:       c.MaintenanceDue,
		DaysSinceMaintenance: int(now.Sub(c.LastMaintenance).Hours() / 24),
		NextMaintenanceDays:  int(c.NextMaintenance.Sub(now).Hours() / 24),
	}
}

const (
	historyTailPoints = 50
	trendWindow       = 10
	trendEpsilon      = 0.01
)

func (c *Component) details(now time.Time) drive.ComponentDetails {
	return drive.ComponentDetails{
		Status:             c.status(now),
		TemperatureHistory: c.tempHistory.tail(historyTailPoints),
		VibrationHistory:   c.vibHistory.tail(historyTailPoints),
		HealthHistory:      c.healthHistory.tail(historyTailPoints),
		EfficiencyHistory:  c.effHistory.tail(historyTailPoints),
		Trends:             c.trends(),
	}
}

// trends labels the direction of the health and temperature series over the
// last trendWindow samples, with a small dead zone mapped to stable.
func (c *Component) trends() drive.TrendSummary {
	t := drive.TrendSummary{
		HealthTrend:      drive.TrendStable,
		TemperatureTrend: drive.TrendStable,
	}
	if d, ok := c.healthHistory.recentDelta(trendWindow); ok {
		t.HealthChangeRate = d
		switch {
		case d > trendEpsilon:
			t.HealthTrend = drive.TrendImproving
		case d < -trendEpsilon:
			t.HealthTrend = drive.TrendDeclining
		}
	}
	if d, ok := c.tempHistory.recentDelta(trendWindow); ok {
		t.TemperatureChangeRate = d
		switch {
		case d > trendEpsilon:
			t.TemperatureTrend = drive.TrendRising
		case d < -trendEpsilon:
			t.TemperatureTrend = drive.TrendFalling
		}
	}
	return t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
