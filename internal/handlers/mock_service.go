package handlers

import (
	"context"
	"net/http"
	"time"

	drive "drive_diagnostics"
	"drive_diagnostics/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDiagnostics struct {
	snapshot       drive.DiagnosticSnapshot
	details        drive.ComponentDetails
	detailsErr     error
	injectFaultErr error
	injectAlarmErr error
	maintenanceRec drive.MaintenanceRecord
	maintenanceErr error

	clearCalls         int
	lastDetailsID      string
	lastFaultID        string
	lastFaultComponent string
	lastAlarmID        string
	lastAlarmComponent string
	lastMaintenanceID  string
}

func (m *mockDiagnostics) Snapshot(ctx context.Context) drive.DiagnosticSnapshot {
	return m.snapshot
}
func (m *mockDiagnostics) ComponentDetails(ctx context.Context, componentID string) (drive.ComponentDetails, error) {
	m.lastDetailsID = componentID
	return m.details, m.detailsErr
}
func (m *mockDiagnostics) InjectFault(ctx context.Context, faultID, componentID string) error {
	m.lastFaultID = faultID
	m.lastFaultComponent = componentID
	return m.injectFaultErr
}
func (m *mockDiagnostics) InjectAlarm(ctx context.Context, alarmID, componentID string) error {
	m.lastAlarmID = alarmID
	m.lastAlarmComponent = componentID
	return m.injectAlarmErr
}
func (m *mockDiagnostics) ClearAll(ctx context.Context) {
	m.clearCalls++
}
func (m *mockDiagnostics) PerformMaintenance(ctx context.Context, componentID string) (drive.MaintenanceRecord, error) {
	m.lastMaintenanceID = componentID
	return m.maintenanceRec, m.maintenanceErr
}

type mockScenarios struct {
	available []drive.ScenarioInfo
	current   *drive.ScenarioSnapshot
	startInfo drive.ScenarioInfo
	startErr  error
	stopInfo  drive.ScenarioInfo
	stopOK    bool

	lastStartName string
	stopCalls     int
}

func (m *mockScenarios) Available(ctx context.Context) []drive.ScenarioInfo {
	return m.available
}
func (m *mockScenarios) Current(ctx context.Context) *drive.ScenarioSnapshot {
	return m.current
}
func (m *mockScenarios) Start(ctx context.Context, name string) (drive.ScenarioInfo, error) {
	m.lastStartName = name
	return m.startInfo, m.startErr
}
func (m *mockScenarios) Stop(ctx context.Context) (drive.ScenarioInfo, bool) {
	m.stopCalls++
	return m.stopInfo, m.stopOK
}

type mockEventLog struct {
	resp          []drive.DiagnosticEvent
	err           error
	lastFrom      time.Time
	lastTo        time.Time
	lastKind      string
	lastComponent string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]drive.DiagnosticEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastKind = f.Kind
	m.lastComponent = f.Component
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
