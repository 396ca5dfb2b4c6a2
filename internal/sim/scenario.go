package sim

import (
	"errors"
	"math"
	"math/rand"
	"time"

	drive "drive_diagnostics"
)

// ErrScenarioNotFound is returned when a start request names an unknown
// scenario.
var ErrScenarioNotFound = errors.New("scenario not found")

// Scenario event kinds.
const (
	EventKindFault           = "fault"
	EventKindAlarm           = "alarm"
	EventKindClear           = "clear"
	EventKindLoadChange      = "load_change"
	EventKindMaintenance     = "maintenance"
	EventKindMaintenanceSkip = "maintenance_skip"
)

// Clear targets.
const (
	ClearAll    = "all"
	ClearFaults = "faults"
	ClearAlarms = "alarms"
)

// ScenarioEvent is one scripted step of a scenario timeline.
type ScenarioEvent struct {
	Offset    float64 `mapstructure:"time"` // seconds after scenario start
	Kind      string  `mapstructure:"type"`
	Component string  `mapstructure:"component"` // target component, or "all" where the kind allows
	Code      string  `mapstructure:"id"`        // fault/alarm id for injection kinds
	Target    string  `mapstructure:"target"`    // clear scope: all, faults, alarms
	Load      float64 `mapstructure:"load_percentage"`
}

// ScenarioDefinition is an immutable scripted timeline.
type ScenarioDefinition struct {
	Name        string
	Description string
	Duration    float64 // seconds
	Events      []ScenarioEvent
}

// scenarioRun tracks one execution of a definition. fired flags are scoped
// to the run and discarded with it.
type scenarioRun struct {
	def     ScenarioDefinition
	started time.Time
	fired   []bool
}

// ScenarioEngine owns the scenario catalog and the at-most-one active run.
// All methods are called with the simulator's lock held.
type ScenarioEngine struct {
	defs []ScenarioDefinition
	run  *scenarioRun
	rng  *rand.Rand
}

// NewScenarioEngine builds an engine over the built-in catalog plus any
// extra definitions, typically loaded from a YAML file.
func NewScenarioEngine(rng *rand.Rand, extra ...ScenarioDefinition) *ScenarioEngine {
	defs := make([]ScenarioDefinition, 0, len(builtinScenarios)+len(extra))
	defs = append(defs, builtinScenarios...)
	defs = append(defs, extra...)
	return &ScenarioEngine{defs: defs, rng: rng}
}

// Start begins a run at now, preempting any current run without error. An
// empty name picks a random catalog entry.
func (s *ScenarioEngine) Start(name string, now time.Time) (drive.ScenarioInfo, error) {
	var def *ScenarioDefinition
	if name == "" {
		if len(s.defs) == 0 {
			return drive.ScenarioInfo{}, ErrScenarioNotFound
		}
		def = &s.defs[s.rng.Intn(len(s.defs))]
	} else {
		for i := range s.defs {
			if s.defs[i].Name == name {
				def = &s.defs[i]
				break
			}
		}
		if def == nil {
			return drive.ScenarioInfo{}, ErrScenarioNotFound
		}
	}
	s.run = &scenarioRun{
		def:     *def,
		started: now,
		fired:   make([]bool, len(def.Events)),
	}
	return scenarioInfo(*def), nil
}

// Stop ends the current run without touching diagnostic state. The second
// return is false when no run was active.
func (s *ScenarioEngine) Stop() (drive.ScenarioInfo, bool) {
	if s.run == nil {
		return drive.ScenarioInfo{}, false
	}
	info := scenarioInfo(s.run.def)
	s.run = nil
	return info, true
}

// Advance returns the events due at now, in definition order, each fired
// exactly once per run. When the run's duration has elapsed it is ended and
// reported through the second return; no further events fire.
func (s *ScenarioEngine) Advance(now time.Time) (due []ScenarioEvent, completed *drive.ScenarioInfo) {
	if s.run == nil {
		return nil, nil
	}
	elapsed := now.Sub(s.run.started).Seconds()
	if elapsed >= s.run.def.Duration {
		info := scenarioInfo(s.run.def)
		s.run = nil
		return nil, &info
	}
	for i := range s.run.def.Events {
		if !s.run.fired[i] && elapsed >= s.run.def.Events[i].Offset {
			s.run.fired[i] = true
			due = append(due, s.run.def.Events[i])
		}
	}
	return due, nil
}

// Current builds a read-only view of the active run, or nil when idle.
func (s *ScenarioEngine) Current(now time.Time) *drive.ScenarioSnapshot {
	if s.run == nil {
		return nil
	}
	elapsed := now.Sub(s.run.started).Seconds()
	remaining := math.Max(0, s.run.def.Duration-elapsed)
	return &drive.ScenarioSnapshot{
		Name:        s.run.def.Name,
		Description: s.run.def.Description,
		Duration:    s.run.def.Duration,
		Elapsed:     elapsed,
		Remaining:   remaining,
		Progress:    math.Min(100, elapsed/s.run.def.Duration*100),
		Running:     remaining > 0,
	}
}

// Available lists the catalog.
func (s *ScenarioEngine) Available() []drive.ScenarioInfo {
	out := make([]drive.ScenarioInfo, 0, len(s.defs))
	for _, def := range s.defs {
		out = append(out, scenarioInfo(def))
	}
	return out
}

func scenarioInfo(def ScenarioDefinition) drive.ScenarioInfo {
	return drive.ScenarioInfo{
		Name:        def.Name,
		Description: def.Description,
		Duration:    def.Duration,
	}
}

// builtinScenarios is the demonstration catalog shipped with the engine.
var builtinScenarios = []ScenarioDefinition{
	{
		Name:        "Normal Operation",
		Description: "Steady production load with no induced failures",
		Duration:    300,
	},
	{
		Name:        "Motor Overload",
		Description: "Motor driven past its thermal rating until it trips",
		Duration:    180,
		Events: []ScenarioEvent{
			{Offset: 30, Kind: EventKindAlarm, Component: ComponentMotor, Code: "A05020"},
			{Offset: 60, Kind: EventKindFault, Component: ComponentMotor, Code: "F30001"},
			{Offset: 120, Kind: EventKindClear, Target: ClearFaults},
		},
	},
	{
		Name:        "Cooling System Failure",
		Description: "Fan degradation cascading into inverter overheating",
		Duration:    240,
		Events: []ScenarioEvent{
			{Offset: 20, Kind: EventKindAlarm, Component: ComponentFan, Code: "A05010"},
			{Offset: 40, Kind: EventKindAlarm, Component: ComponentInverter, Code: "A05040"},
			{Offset: 80, Kind: EventKindFault, Component: ComponentFan, Code: "F30030"},
			{Offset: 120, Kind: EventKindFault, Component: ComponentInverter, Code: "F30012"},
			{Offset: 180, Kind: EventKindClear, Target: ClearAll},
		},
	},
	{
		Name:        "DC Link Problems",
		Description: "Intermediate circuit voltage excursions in both directions",
		Duration:    200,
		Events: []ScenarioEvent{
			{Offset: 15, Kind: EventKindAlarm, Component: ComponentDCLink, Code: "A05030"},
			{Offset: 45, Kind: EventKindFault, Component: ComponentDCLink, Code: "F30020"},
			{Offset: 90, Kind: EventKindClear, Target: ClearFaults},
			{Offset: 120, Kind: EventKindFault, Component: ComponentDCLink, Code: "F30021"},
			{Offset: 150, Kind: EventKindClear, Target: ClearAll},
		},
	},
	{
		Name:        "Communication Issues",
		Description: "Intermittent fieldbus disturbance at the control unit",
		Duration:    160,
		Events: []ScenarioEvent{
			{Offset: 10, Kind: EventKindAlarm, Component: ComponentCU320, Code: "A05050"},
			{Offset: 30, Kind: EventKindFault, Component: ComponentCU320, Code: "F30050"},
			{Offset: 60, Kind: EventKindClear, Target: ClearFaults},
			{Offset: 80, Kind: EventKindAlarm, Component: ComponentCU320, Code: "A05050"},
			{Offset: 120, Kind: EventKindClear, Target: ClearAll},
		},
	},
	{
		Name:        "Cascading Failures",
		Description: "A bearing defect propagating through the whole drive train",
		Duration:    300,
		Events: []ScenarioEvent{
			{Offset: 20, Kind: EventKindAlarm, Component: ComponentMotor, Code: "A05060"},
			{Offset: 40, Kind: EventKindFault, Component: ComponentMotor, Code: "F30011"},
			{Offset: 60, Kind: EventKindAlarm, Component: ComponentMotor, Code: "A05020"},
			{Offset: 80, Kind: EventKindFault, Component: ComponentMotor, Code: "F30002"},
			{Offset: 100, Kind: EventKindFault, Component: ComponentInverter, Code: "F30012"},
			{Offset: 120, Kind: EventKindFault, Component: ComponentCU320, Code: "F30040"},
			{Offset: 200, Kind: EventKindClear, Target: ClearAll},
		},
	},
	{
		Name:        "Production Peak Load",
		Description: "Sustained high demand with motor and inverter near limits",
		Duration:    600,
		Events: []ScenarioEvent{
			{Offset: 0, Kind: EventKindLoadChange, Component: ComponentMotor, Load: 95},
			{Offset: 0, Kind: EventKindLoadChange, Component: ComponentInverter, Load: 90},
		},
	},
	{
		Name:        "Maintenance Overdue",
		Description: "Accelerated wear from a skipped service interval",
		Duration:    300,
		Events: []ScenarioEvent{
			{Offset: 0, Kind: EventKindMaintenanceSkip},
		},
	},
	{
		Name:        "Environmental Stress",
		Description: "Cooling pushed to maximum under harsh ambient conditions",
		Duration:    400,
		Events: []ScenarioEvent{
			{Offset: 0, Kind: EventKindLoadChange, Component: ComponentFan, Load: 100},
		},
	},
}
