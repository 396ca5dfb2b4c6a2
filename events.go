package drive_diagnostics

import "time"

// Journal event kinds.
const (
	EventFault             = "FAULT"
	EventFaultCleared      = "FAULT_CLEARED"
	EventAlarm             = "ALARM"
	EventAlarmCleared      = "ALARM_CLEARED"
	EventClear             = "CLEAR"
	EventScenarioStarted   = "SCENARIO_STARTED"
	EventScenarioStopped   = "SCENARIO_STOPPED"
	EventScenarioCompleted = "SCENARIO_COMPLETED"
	EventMaintenance       = "MAINTENANCE"
)

// DiagnosticEvent is a single journal entry.
type DiagnosticEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Kind        string    `json:"kind"`
	ComponentID string    `json:"component_id,omitempty"`
	Code        string    `json:"code,omitempty"` // fault/alarm id, when applicable
	Severity    string    `json:"severity,omitempty"`
	Message     string    `json:"message"`
	Metadata    any       `json:"metadata,omitempty"`
}

// MaintenanceRecord tracks the service dates of one component.
type MaintenanceRecord struct {
	ComponentID string    `json:"component_id"`
	Last        time.Time `json:"last_maintenance"`
	Next        time.Time `json:"next_maintenance"`
}
