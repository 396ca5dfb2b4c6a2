package service

import (
	"context"
	drive "drive_diagnostics"

	"drive_diagnostics/internal/logger"
	"drive_diagnostics/internal/repository"
)

// DiagnosticsService fronts the engine for reads and manual interventions.
type DiagnosticsService struct {
	engine      Engine
	maintenance repository.MaintenanceRepo
	log         *logger.Logger
}

func NewDiagnosticsService(engine Engine, maintenance repository.MaintenanceRepo, log *logger.Logger) *DiagnosticsService {
	return &DiagnosticsService{
		engine:      engine,
		maintenance: maintenance,
		log:         log.Named("diagnostics"),
	}
}

// Snapshot returns the full diagnostic view of the drive.
func (s *DiagnosticsService) Snapshot(ctx context.Context) drive.DiagnosticSnapshot {
	return s.engine.ReadDiagnostics()
}

// ComponentDetails returns the detailed view of one component including history.
func (s *DiagnosticsService) ComponentDetails(ctx context.Context, componentID string) (drive.ComponentDetails, error) {
	return s.engine.GetComponentDetails(componentID)
}

// InjectFault manually raises a fault on a component.
func (s *DiagnosticsService) InjectFault(ctx context.Context, faultID, componentID string) error {
	return s.engine.InjectFault(faultID, componentID)
}

// InjectAlarm manually raises an alarm on a component.
func (s *DiagnosticsService) InjectAlarm(ctx context.Context, alarmID, componentID string) error {
	return s.engine.InjectAlarm(alarmID, componentID)
}

// ClearAll acknowledges every active fault and alarm.
func (s *DiagnosticsService) ClearAll(ctx context.Context) {
	s.engine.Clear()
}

// PerformMaintenance services a component and persists the new service dates.
// The engine state is authoritative; a failed save is logged, not returned.
func (s *DiagnosticsService) PerformMaintenance(ctx context.Context, componentID string) (drive.MaintenanceRecord, error) {
	rec, err := s.engine.PerformMaintenance(componentID)
	if err != nil {
		return drive.MaintenanceRecord{}, err
	}
	if err := s.maintenance.Save(ctx, rec); err != nil {
		s.log.Errorw("persist maintenance record", "component", componentID, "error", err)
	}
	return rec, nil
}
