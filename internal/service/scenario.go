package service

import (
	"context"
	drive "drive_diagnostics"
)

// ScenarioService fronts the engine's scripted fault timelines.
type ScenarioService struct {
	engine Engine
}

func NewScenarioService(engine Engine) *ScenarioService {
	return &ScenarioService{engine: engine}
}

// Available lists every scenario the engine can run.
func (s *ScenarioService) Available(ctx context.Context) []drive.ScenarioInfo {
	return s.engine.GetAvailableScenarios()
}

// Current returns the running scenario view, or nil when idle.
func (s *ScenarioService) Current(ctx context.Context) *drive.ScenarioSnapshot {
	return s.engine.GetCurrentScenario()
}

// Start launches a scenario by name; empty name picks one at random.
func (s *ScenarioService) Start(ctx context.Context, name string) (drive.ScenarioInfo, error) {
	return s.engine.StartScenario(name)
}

// Stop aborts the running scenario. The second value reports whether one was running.
func (s *ScenarioService) Stop(ctx context.Context) (drive.ScenarioInfo, bool) {
	return s.engine.StopScenario()
}
