package service

import (
	"context"
	drive "drive_diagnostics"

	"drive_diagnostics/internal/logger"
	"drive_diagnostics/internal/repository"
	"drive_diagnostics/internal/sim"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Diagnostics exposes the live drive view and manual interventions.
type Diagnostics interface {
	Snapshot(ctx context.Context) drive.DiagnosticSnapshot
	ComponentDetails(ctx context.Context, componentID string) (drive.ComponentDetails, error)
	InjectFault(ctx context.Context, faultID, componentID string) error
	InjectAlarm(ctx context.Context, alarmID, componentID string) error
	ClearAll(ctx context.Context)
	PerformMaintenance(ctx context.Context, componentID string) (drive.MaintenanceRecord, error)
}

// Scenarios exposes the scripted fault timelines.
type Scenarios interface {
	Available(ctx context.Context) []drive.ScenarioInfo
	Current(ctx context.Context) *drive.ScenarioSnapshot
	Start(ctx context.Context, name string) (drive.ScenarioInfo, error)
	Stop(ctx context.Context) (drive.ScenarioInfo, bool)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]drive.DiagnosticEvent, error)
}

// Engine is the live simulation the services front.
type Engine interface {
	ReadDiagnostics() drive.DiagnosticSnapshot
	GetComponentDetails(componentID string) (drive.ComponentDetails, error)
	InjectFault(faultID, componentID string) error
	InjectAlarm(alarmID, componentID string) error
	Clear()
	PerformMaintenance(componentID string) (drive.MaintenanceRecord, error)
	StartScenario(name string) (drive.ScenarioInfo, error)
	StopScenario() (drive.ScenarioInfo, bool)
	GetCurrentScenario() *drive.ScenarioSnapshot
	GetAvailableScenarios() []drive.ScenarioInfo
}

var _ Engine = (*sim.Simulator)(nil)

// Engine errors surfaced to transport code.
var (
	ErrComponentNotFound = sim.ErrComponentNotFound
	ErrFaultNotFound     = sim.ErrFaultNotFound
	ErrAlarmNotFound     = sim.ErrAlarmNotFound
	ErrComponentMismatch = sim.ErrComponentMismatch
	ErrScenarioNotFound  = sim.ErrScenarioNotFound
)

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Diagnostics
	Scenarios
	EventLog
	Authorization
}

// NewService wires the engine and repository layer into concrete services.
func NewService(engine Engine, repos *repository.Repository, authCfg AuthConfig, log *logger.Logger) *Service {
	return &Service{
		Diagnostics:   NewDiagnosticsService(engine, repos.Maintenance, log),
		Scenarios:     NewScenarioService(engine),
		EventLog:      NewEventLogService(repos.Events),
		Authorization: NewAuthService(repos.Auth, authCfg),
	}
}
