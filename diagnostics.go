package drive_diagnostics

import "time"

// Severity levels used by the fault/alarm catalog.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// FaultEntry is one active fault as exposed to consumers.
type FaultEntry struct {
	ID          string    `json:"id"`
	Description string    `json:"desc"`
	Component   string    `json:"component"`
	Severity    string    `json:"severity"`
	Timestamp   time.Time `json:"timestamp"` // first seen; stable across re-evaluation
}

// AlarmEntry is one active alarm. Same shape as FaultEntry plus a status
// field some consumers expect.
type AlarmEntry struct {
	ID          string    `json:"id"`
	Description string    `json:"desc"`
	Component   string    `json:"component"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status,omitempty"` // "active"
	Timestamp   time.Time `json:"timestamp"`
}

// ComponentStatus is the per-component block of a diagnostic snapshot.
type ComponentStatus struct {
	ComponentID          string  `json:"component_id"`
	ComponentName        string  `json:"component_name"`
	HealthScore          float64 `json:"health_score"` // 0–100
	Temperature          float64 `json:"temperature"`  // °C
	Vibration            float64 `json:"vibration"`    // mm/s
	Current              float64 `json:"current"`      // A
	Voltage              float64 `json:"voltage"`      // V
	Power                float64 `json:"power"`        // kW
	Efficiency           float64 `json:"efficiency"`   // %
	LoadPercentage       float64 `json:"load_percentage"`
	IsRunning            bool    `json:"is_running"`
	OperatingHours       float64 `json:"operating_hours"`
	StartStopCycles      int     `json:"start_stop_cycles"`
	FatigueLevel         float64 `json:"fatigue_level"`
	CorrosionLevel       float64 `json:"corrosion_level"`
	LubricationLevel     float64 `json:"lubrication_level"`
	FaultCount           int     `json:"faults"`
	AlarmCount           int     `json:"alarms"`
	MaintenanceDue       bool    `json:"maintenance_due"`
	DaysSinceMaintenance int     `json:"days_since_maintenance"`
	NextMaintenanceDays  int     `json:"next_maintenance_days"`
}

// EnvironmentSnapshot is the ambient forcing block of a snapshot.
type EnvironmentSnapshot struct {
	AmbientTemperature float64 `json:"ambient_temperature"` // °C
	Humidity           float64 `json:"humidity"`            // %
	PowerQuality       float64 `json:"power_quality"`       // %
	DustLevel          float64 `json:"dust_level"`          // %
	VibrationFloor     float64 `json:"vibration_floor"`     // mm/s
}

// SystemSnapshot carries plant-level electrical figures.
type SystemSnapshot struct {
	LoadPercentage float64 `json:"load_percentage"`
	Frequency      float64 `json:"frequency"` // Hz
	Voltage        float64 `json:"voltage"`   // V
}

// ScenarioSnapshot describes the currently running scenario, if any.
type ScenarioSnapshot struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"` // seconds
	Elapsed     float64 `json:"elapsed"`
	Remaining   float64 `json:"remaining"`
	Progress    float64 `json:"progress"` // percent
	Running     bool    `json:"running"`
}

// ScenarioInfo is a catalog listing entry.
type ScenarioInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"` // seconds
}

// DiagnosticSnapshot is the full read surface published after each tick.
// All contained data is copied; consumers may retain or mutate it freely.
type DiagnosticSnapshot struct {
	Faults      []FaultEntry               `json:"faults"`
	Alarms      []AlarmEntry               `json:"alarms"`
	Components  map[string]ComponentStatus `json:"components"`
	Environment EnvironmentSnapshot        `json:"environment"`
	System      SystemSnapshot             `json:"system"`
	Scenario    *ScenarioSnapshot          `json:"scenario,omitempty"`
	Timestamp   time.Time                  `json:"timestamp"`
}

// HistoryPoint is a single timestamped sample from a component series.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Trend direction labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendRising    = "rising"
	TrendFalling   = "falling"
	TrendStable    = "stable"
)

// TrendSummary condenses the recent direction of a component's key series.
type TrendSummary struct {
	HealthTrend           string  `json:"health_trend"`      // improving | stable | declining
	TemperatureTrend      string  `json:"temperature_trend"` // rising | stable | falling
	HealthChangeRate      float64 `json:"health_change_rate"`
	TemperatureChangeRate float64 `json:"temperature_change_rate"`
}

// ComponentDetails is the drill-down view for a single component.
type ComponentDetails struct {
	Status             ComponentStatus `json:"status"`
	TemperatureHistory []HistoryPoint  `json:"temperature_history"`
	VibrationHistory   []HistoryPoint  `json:"vibration_history"`
	HealthHistory      []HistoryPoint  `json:"health_history"`
	EfficiencyHistory  []HistoryPoint  `json:"efficiency_history"`
	Trends             TrendSummary    `json:"trends"`
}
