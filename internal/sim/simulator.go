package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	drive "drive_diagnostics"
	"drive_diagnostics/internal/logger"

	"github.com/zoobzio/clockz"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultTickInterval     = 100 * time.Millisecond
	DefaultHistoryRetention = time.Hour
	DefaultSampleInterval   = time.Second
)

// Sentinel errors for caller-facing operations.
var (
	ErrComponentNotFound = errors.New("component not found")
	ErrFaultNotFound     = errors.New("fault not found")
	ErrAlarmNotFound     = errors.New("alarm not found")
	ErrComponentMismatch = errors.New("id belongs to a different component")
)

// Injection sources recorded in event metadata.
const (
	sourceManual   = "manual"
	sourceScenario = "scenario"
)

// Config assembles a Simulator.
type Config struct {
	TickInterval     time.Duration
	HistoryRetention time.Duration
	SampleInterval   time.Duration
	Profile          Profile
	Seed             int64  // 0 means time-seeded
	AmbientWave      string // forcing function name, empty means daily_sine
	Scenarios        []ScenarioDefinition
	Clock            clockz.Clock // nil means the real clock
}

// Simulator owns the full simulation state graph: environment, the six
// drive components, the evaluator and the scenario engine, all guarded by
// one mutex. A background goroutine advances the model on a fixed tick;
// every accessor takes the same lock, so readers always observe a whole
// tick, never a partial one.
type Simulator struct {
	mu    sync.Mutex
	log   *logger.Logger
	rng   *rand.Rand
	clock clockz.Clock
	tick  time.Duration

	env        *Environment
	components map[string]*Component
	order      []string
	evaluator  *Evaluator
	scenarios  *ScenarioEngine

	systemLoad float64
	profile    Profile

	retention      time.Duration
	sampleInterval time.Duration
	lastSample     time.Time
	lastTick       time.Time

	onEvents func([]drive.DiagnosticEvent)

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New builds a stopped simulator with the fixed component roster.
func New(cfg Config, log *logger.Logger) (*Simulator, error) {
	waveName := cfg.AmbientWave
	if waveName == "" {
		waveName = "daily_sine"
	}
	wave, err := GetForcingFunc(waveName)
	if err != nil {
		return nil, err
	}

	profile := cfg.Profile
	if profile == "" {
		profile = ProfileRealistic
	}
	switch profile {
	case ProfileSimple, ProfileRealistic:
	default:
		return nil, fmt.Errorf("unknown simulation profile %q", profile)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clockz.RealClock
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	retention := cfg.HistoryRetention
	if retention <= 0 {
		retention = DefaultHistoryRetention
	}
	sample := cfg.SampleInterval
	if sample <= 0 {
		sample = DefaultSampleInterval
	}

	rng := rand.New(rand.NewSource(seed))
	now := clk.Now()

	s := &Simulator{
		log:            log.Named("sim"),
		rng:            rng,
		clock:          clk,
		tick:           tick,
		env:            NewEnvironment(wave),
		components:     make(map[string]*Component, len(componentRoster)),
		evaluator:      NewEvaluator(),
		profile:        profile,
		retention:      retention,
		sampleInterval: sample,
		lastSample:     now,
		lastTick:       now,
	}
	for _, rc := range componentRoster {
		s.components[rc.ID] = newComponent(rc.ID, rc.Name, now, rng)
		s.order = append(s.order, rc.ID)
	}
	s.scenarios = NewScenarioEngine(rng, cfg.Scenarios...)
	return s, nil
}

// OnEvents installs the journal sink. The sink is invoked outside the state
// lock, after the mutation that produced the events has completed.
func (s *Simulator) OnEvents(fn func([]drive.DiagnosticEvent)) {
	s.mu.Lock()
	s.onEvents = fn
	s.mu.Unlock()
}

// RestoreMaintenance seeds persisted service dates into the roster, so
// maintenance intervals survive a restart. Unknown components are skipped.
func (s *Simulator) RestoreMaintenance(records []drive.MaintenanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if c, ok := s.components[r.ComponentID]; ok {
			c.LastMaintenance = r.Last
			c.NextMaintenance = r.Next
		}
	}
}

// Start launches the tick loop. Calling Start on a running simulator is a
// no-op.
func (s *Simulator) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.lastTick = s.clock.Now()
	stop, done := s.stop, s.done
	s.mu.Unlock()

	s.log.Infow("simulation started", "tick", s.tick, "profile", string(s.profile))
	go s.run(stop, done)
}

// Stop terminates the tick loop and waits for it to exit. After Stop
// returns no further state mutation happens until the next Start.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	s.log.Infow("simulation stopped")
}

// Running reports whether the tick loop is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-s.clock.After(s.tick):
			s.safeTick(s.clock.Now())
		}
	}
}

// safeTick contains one tick. A panic is logged and swallowed so the loop
// carries on at the next cadence.
func (s *Simulator) safeTick(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("simulation tick failed", "panic", r)
		}
	}()
	s.deliver(s.advance(now))
}

// advance runs one pass of the pipeline: environment, plant load, component
// physics, fault/alarm derivation, scenario timeline, history sampling. It
// returns the journal events produced by the pass.
func (s *Simulator) advance(now time.Time) []drive.DiagnosticEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	if dt <= 0 {
		return nil
	}

	s.env.Update(now, dt, s.rng)
	s.systemLoad = slewToward(s.systemLoad, plantTargetLoad(now.Hour(), s.rng),
		systemLoadSlewRate, systemLoadDeadband, dt)

	for _, id := range s.order {
		s.components[id].update(dt, s.env, s.systemLoad, s.profile, s.rng)
	}

	var events []drive.DiagnosticEvent
	for _, tr := range s.evaluator.Recompute(now, s.components) {
		events = append(events, transitionEvent(tr))
	}

	due, completed := s.scenarios.Advance(now)
	for _, ev := range due {
		events = append(events, s.applyScenarioEvent(now, ev)...)
	}
	if completed != nil {
		cleared := s.clearActiveLocked(ClearAll)
		events = append(events, drive.DiagnosticEvent{
			OccurredAt: now,
			Kind:       drive.EventScenarioCompleted,
			Message:    "Scenario completed: " + completed.Name,
			Metadata:   map[string]any{"scenario": completed.Name, "cleared": cleared},
		})
		s.log.Infow("scenario completed", "scenario", completed.Name)
	}

	if now.Sub(s.lastSample) >= s.sampleInterval {
		s.lastSample = now
		cutoff := now.Add(-s.retention)
		for _, id := range s.order {
			c := s.components[id]
			c.recordHistory(now)
			c.pruneHistory(cutoff)
		}
	}
	return events
}

// deliver hands journal events to the installed sink, outside the lock.
func (s *Simulator) deliver(events []drive.DiagnosticEvent) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	fn := s.onEvents
	s.mu.Unlock()
	if fn != nil {
		fn(events)
	}
}

// applyScenarioEvent executes one due timeline event. Bad events are logged
// and skipped; they never abort the tick.
func (s *Simulator) applyScenarioEvent(now time.Time, ev ScenarioEvent) []drive.DiagnosticEvent {
	switch ev.Kind {
	case EventKindFault:
		events, err := s.injectFaultLocked(now, ev.Code, ev.Component, sourceScenario)
		if err != nil {
			s.log.Warnw("scenario fault event skipped", "id", ev.Code, "component", ev.Component, "error", err)
			return nil
		}
		return events
	case EventKindAlarm:
		events, err := s.injectAlarmLocked(now, ev.Code, ev.Component, sourceScenario)
		if err != nil {
			s.log.Warnw("scenario alarm event skipped", "id", ev.Code, "component", ev.Component, "error", err)
			return nil
		}
		return events
	case EventKindClear:
		target := ev.Target
		if target == "" {
			target = ClearAll
		}
		cleared := s.clearActiveLocked(target)
		return []drive.DiagnosticEvent{{
			OccurredAt: now,
			Kind:       drive.EventClear,
			Message:    "Scenario cleared " + target,
			Metadata:   map[string]any{"target": target, "cleared": cleared, "source": sourceScenario},
		}}
	case EventKindLoadChange:
		if ev.Component == "" || ev.Component == "all" {
			for _, id := range s.order {
				s.components[id].LoadPercentage = ev.Load
			}
			s.log.Infow("scenario load change", "component", "all", "load", ev.Load)
			return nil
		}
		c, ok := s.components[ev.Component]
		if !ok {
			s.log.Warnw("scenario load change skipped", "component", ev.Component)
			return nil
		}
		c.LoadPercentage = ev.Load
		s.log.Infow("scenario load change", "component", ev.Component, "load", ev.Load)
		return nil
	case EventKindMaintenance:
		if ev.Component == "" || ev.Component == "all" {
			var out []drive.DiagnosticEvent
			for _, id := range s.order {
				_, mev := s.maintainLocked(s.components[id], now)
				out = append(out, mev)
			}
			return out
		}
		c, ok := s.components[ev.Component]
		if !ok {
			s.log.Warnw("scenario maintenance skipped", "component", ev.Component)
			return nil
		}
		_, mev := s.maintainLocked(c, now)
		return []drive.DiagnosticEvent{mev}
	case EventKindMaintenanceSkip:
		for _, id := range s.order {
			c := s.components[id]
			c.FatigueLevel += 20
			c.HealthScore = clamp(c.HealthScore-10, 0, 100)
		}
		s.log.Infow("scenario skipped maintenance interval")
		return nil
	}
	s.log.Warnw("unknown scenario event type", "type", ev.Kind)
	return nil
}

// ReadDiagnostics builds an immutable snapshot of the whole state graph.
// Safe to call concurrently with the running loop.
func (s *Simulator) ReadDiagnostics() drive.DiagnosticSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	snap := drive.DiagnosticSnapshot{
		Faults:      []drive.FaultEntry{},
		Alarms:      []drive.AlarmEntry{},
		Components:  make(map[string]drive.ComponentStatus, len(s.order)),
		Environment: s.env.snapshot(),
		System: drive.SystemSnapshot{
			LoadPercentage: s.systemLoad,
			Frequency:      systemFrequencyHz,
			Voltage:        systemVoltageV,
		},
		Scenario:  s.scenarios.Current(now),
		Timestamp: now,
	}
	for _, id := range s.order {
		c := s.components[id]
		snap.Components[id] = c.status(now)
		for _, e := range c.activeFaults {
			def := faultByID[e.id]
			snap.Faults = append(snap.Faults, drive.FaultEntry{
				ID:          e.id,
				Description: def.Description,
				Component:   id,
				Severity:    def.Severity,
				Timestamp:   e.at,
			})
		}
		for _, e := range c.activeAlarms {
			def := alarmByID[e.id]
			snap.Alarms = append(snap.Alarms, drive.AlarmEntry{
				ID:          e.id,
				Description: def.Description,
				Component:   id,
				Severity:    def.Severity,
				Status:      "active",
				Timestamp:   e.at,
			})
		}
	}
	return snap
}

// GetComponentDetails returns the drill-down view for one component,
// including trailing history and trends.
func (s *Simulator) GetComponentDetails(componentID string) (drive.ComponentDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.components[componentID]
	if !ok {
		return drive.ComponentDetails{}, ErrComponentNotFound
	}
	return c.details(s.clock.Now()), nil
}

// InjectFault writes a fault directly into its component's active set,
// bypassing the evaluator. Unknown ids and mismatched components are
// rejected; injecting an already-active fault is a silent no-op.
func (s *Simulator) InjectFault(faultID, componentID string) error {
	s.mu.Lock()
	events, err := s.injectFaultLocked(s.clock.Now(), faultID, componentID, sourceManual)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.deliver(events)
	return nil
}

// InjectAlarm is the alarm counterpart of InjectFault.
func (s *Simulator) InjectAlarm(alarmID, componentID string) error {
	s.mu.Lock()
	events, err := s.injectAlarmLocked(s.clock.Now(), alarmID, componentID, sourceManual)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.deliver(events)
	return nil
}

// Clear wipes every active fault and alarm across all components.
func (s *Simulator) Clear() {
	s.mu.Lock()
	now := s.clock.Now()
	cleared := s.clearActiveLocked(ClearAll)
	s.mu.Unlock()

	s.log.Infow("diagnostics cleared", "entries", cleared)
	s.deliver([]drive.DiagnosticEvent{{
		OccurredAt: now,
		Kind:       drive.EventClear,
		Message:    "All faults and alarms cleared",
		Metadata:   map[string]any{"target": ClearAll, "cleared": cleared, "source": sourceManual},
	}})
}

// PerformMaintenance services one component and reports the new interval.
func (s *Simulator) PerformMaintenance(componentID string) (drive.MaintenanceRecord, error) {
	s.mu.Lock()
	c, ok := s.components[componentID]
	if !ok {
		s.mu.Unlock()
		return drive.MaintenanceRecord{}, ErrComponentNotFound
	}
	rec, ev := s.maintainLocked(c, s.clock.Now())
	s.mu.Unlock()

	s.log.Infow("maintenance performed", "component", componentID)
	s.deliver([]drive.DiagnosticEvent{ev})
	return rec, nil
}

// StartScenario begins the named scenario, or a random one when name is
// empty. A running scenario is preempted without error.
func (s *Simulator) StartScenario(name string) (drive.ScenarioInfo, error) {
	s.mu.Lock()
	now := s.clock.Now()
	var preempted string
	if cur := s.scenarios.Current(now); cur != nil {
		preempted = cur.Name
	}
	info, err := s.scenarios.Start(name, now)
	if err != nil {
		s.mu.Unlock()
		return drive.ScenarioInfo{}, err
	}
	s.mu.Unlock()

	s.log.Infow("scenario started", "scenario", info.Name, "duration", info.Duration)
	meta := map[string]any{"duration": info.Duration}
	if preempted != "" {
		meta["preempted"] = preempted
	}
	s.deliver([]drive.DiagnosticEvent{{
		OccurredAt: now,
		Kind:       drive.EventScenarioStarted,
		Message:    "Scenario started: " + info.Name,
		Metadata:   meta,
	}})
	return info, nil
}

// StopScenario ends the current scenario without clearing diagnostic state.
// The second return is false when no scenario was running.
func (s *Simulator) StopScenario() (drive.ScenarioInfo, bool) {
	s.mu.Lock()
	now := s.clock.Now()
	info, ok := s.scenarios.Stop()
	s.mu.Unlock()
	if !ok {
		return drive.ScenarioInfo{}, false
	}

	s.log.Infow("scenario stopped", "scenario", info.Name)
	s.deliver([]drive.DiagnosticEvent{{
		OccurredAt: now,
		Kind:       drive.EventScenarioStopped,
		Message:    "Scenario stopped: " + info.Name,
	}})
	return info, true
}

// GetCurrentScenario returns the active scenario view, or nil when idle.
func (s *Simulator) GetCurrentScenario() *drive.ScenarioSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenarios.Current(s.clock.Now())
}

// GetAvailableScenarios lists the scenario catalog.
func (s *Simulator) GetAvailableScenarios() []drive.ScenarioInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenarios.Available()
}

func (s *Simulator) injectFaultLocked(now time.Time, faultID, componentID, source string) ([]drive.DiagnosticEvent, error) {
	c, ok := s.components[componentID]
	if !ok {
		return nil, ErrComponentNotFound
	}
	def, ok := faultByID[faultID]
	if !ok {
		return nil, ErrFaultNotFound
	}
	if def.Component != componentID {
		return nil, fmt.Errorf("%w: %s belongs to %s", ErrComponentMismatch, faultID, def.Component)
	}
	if !c.addFault(faultID, now) {
		return nil, nil
	}
	return []drive.DiagnosticEvent{{
		OccurredAt:  now,
		Kind:        drive.EventFault,
		ComponentID: componentID,
		Code:        faultID,
		Severity:    def.Severity,
		Message:     def.Description,
		Metadata:    map[string]any{"source": source},
	}}, nil
}

func (s *Simulator) injectAlarmLocked(now time.Time, alarmID, componentID, source string) ([]drive.DiagnosticEvent, error) {
	c, ok := s.components[componentID]
	if !ok {
		return nil, ErrComponentNotFound
	}
	def, ok := alarmByID[alarmID]
	if !ok {
		return nil, ErrAlarmNotFound
	}
	if def.Component != componentID {
		return nil, fmt.Errorf("%w: %s belongs to %s", ErrComponentMismatch, alarmID, def.Component)
	}
	if !c.addAlarm(alarmID, now) {
		return nil, nil
	}
	return []drive.DiagnosticEvent{{
		OccurredAt:  now,
		Kind:        drive.EventAlarm,
		ComponentID: componentID,
		Code:        alarmID,
		Severity:    def.Severity,
		Message:     def.Description,
		Metadata:    map[string]any{"source": source},
	}}, nil
}

// clearActiveLocked wipes active sets per target and resets the matching
// evaluator condition state, so conditions that still hold re-derive on the
// next pass. Returns the number of entries removed.
func (s *Simulator) clearActiveLocked(target string) int {
	cleared := 0
	for _, id := range s.order {
		c := s.components[id]
		if target == ClearAll || target == ClearFaults {
			cleared += len(c.activeFaults)
			c.activeFaults = c.activeFaults[:0]
		}
		if target == ClearAll || target == ClearAlarms {
			cleared += len(c.activeAlarms)
			c.activeAlarms = c.activeAlarms[:0]
		}
	}
	switch target {
	case ClearFaults:
		s.evaluator.ResetFaults()
	case ClearAlarms:
		s.evaluator.ResetAlarms()
	default:
		s.evaluator.ResetFaults()
		s.evaluator.ResetAlarms()
	}
	return cleared
}

// maintainLocked services one component: wear recovery, active sets wiped,
// evaluator state forgotten, dust reset when the fan's filter is serviced.
func (s *Simulator) maintainLocked(c *Component, now time.Time) (drive.MaintenanceRecord, drive.DiagnosticEvent) {
	clearedFaults := make([]string, 0, len(c.activeFaults))
	for _, e := range c.activeFaults {
		clearedFaults = append(clearedFaults, e.id)
	}
	clearedAlarms := make([]string, 0, len(c.activeAlarms))
	for _, e := range c.activeAlarms {
		clearedAlarms = append(clearedAlarms, e.id)
	}

	rec := c.performMaintenance(now)
	s.evaluator.ResetComponent(c.ID)
	if c.ID == ComponentFan {
		s.env.ResetDust()
	}

	ev := drive.DiagnosticEvent{
		OccurredAt:  now,
		Kind:        drive.EventMaintenance,
		ComponentID: c.ID,
		Message:     "Maintenance performed on " + c.Name,
		Metadata: map[string]any{
			"cleared_faults": clearedFaults,
			"cleared_alarms": clearedAlarms,
		},
	}
	return rec, ev
}

func transitionEvent(tr Transition) drive.DiagnosticEvent {
	var kind, msg string
	switch {
	case tr.Kind == TransitionFault && tr.Appeared:
		kind, msg = drive.EventFault, tr.Description
	case tr.Kind == TransitionFault:
		kind, msg = drive.EventFaultCleared, tr.Description+" cleared"
	case tr.Appeared:
		kind, msg = drive.EventAlarm, tr.Description
	default:
		kind, msg = drive.EventAlarmCleared, tr.Description+" cleared"
	}
	return drive.DiagnosticEvent{
		OccurredAt:  tr.At,
		Kind:        kind,
		ComponentID: tr.ComponentID,
		Code:        tr.ID,
		Severity:    tr.Severity,
		Message:     msg,
	}
}
