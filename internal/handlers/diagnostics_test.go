package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drive "drive_diagnostics"
	"drive_diagnostics/internal/service"
)

func protectedGet(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func protectedPost(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	}
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func sampleSnapshot() drive.DiagnosticSnapshot {
	return drive.DiagnosticSnapshot{
		Faults: []drive.FaultEntry{
			{ID: "F30001", Description: "Motor overcurrent", Component: "motor", Severity: drive.SeverityHigh},
		},
		Alarms: []drive.AlarmEntry{},
		Components: map[string]drive.ComponentStatus{
			"motor": {ComponentID: "motor", ComponentName: "Induction Motor", HealthScore: 97.5, IsRunning: true},
		},
		System:    drive.SystemSnapshot{LoadPercentage: 75, Frequency: 50, Voltage: 400},
		Timestamp: time.Now().UTC(),
	}
}

func TestDriveRoutes_RequireAuth(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	diag := &mockDiagnostics{}
	s := &service.Service{Authorization: auth, Diagnostics: diag}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/drive/diagnostics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestGetDiagnostics_ReturnsSnapshot(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	diag := &mockDiagnostics{snapshot: sampleSnapshot()}
	s := &service.Service{Authorization: auth, Diagnostics: diag}
	r := newTestRouter(s)

	w := protectedGet(r, "/api/v1/drive/diagnostics")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	var snap drive.DiagnosticSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(snap.Faults) != 1 || snap.Faults[0].ID != "F30001" {
		t.Fatalf("unexpected faults: %+v", snap.Faults)
	}
	if snap.System.Frequency != 50 {
		t.Fatalf("expected frequency 50, got %v", snap.System.Frequency)
	}
	if _, ok := snap.Components["motor"]; !ok {
		t.Fatalf("expected motor component in snapshot, got %+v", snap.Components)
	}
}

func TestGetComponentDetails_OKAndNotFound(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	diag := &mockDiagnostics{
		details: drive.ComponentDetails{
			Status: drive.ComponentStatus{ComponentID: "fan", ComponentName: "Cooling Fan", HealthScore: 88},
			TemperatureHistory: []drive.HistoryPoint{
				{Timestamp: time.Now().UTC(), Value: 41.2},
			},
			Trends: drive.TrendSummary{HealthTrend: drive.TrendStable, TemperatureTrend: drive.TrendRising},
		},
	}
	s := &service.Service{Authorization: auth, Diagnostics: diag}
	r := newTestRouter(s)

	w := protectedGet(r, "/api/v1/drive/components/fan")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if diag.lastDetailsID != "fan" {
		t.Fatalf("expected lookup for fan, got %q", diag.lastDetailsID)
	}
	var details drive.ComponentDetails
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if details.Status.ComponentID != "fan" || len(details.TemperatureHistory) != 1 {
		t.Fatalf("unexpected details: %+v", details)
	}

	// unknown component id → 404
	diag.detailsErr = service.ErrComponentNotFound
	w = protectedGet(r, "/api/v1/drive/components/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown component, got %d (body=%s)", w.Code, w.Body.String())
	}
}

func TestInjectFault_SuccessAndErrors(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	diag := &mockDiagnostics{snapshot: sampleSnapshot()}
	s := &service.Service{Authorization: auth, Diagnostics: diag}
	r := newTestRouter(s)

	// success includes status, echoed id and a fresh snapshot
	w := protectedPost(r, "/api/v1/drive/faults", `{"fault_id":"F30001","component":"motor"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if diag.lastFaultID != "F30001" || diag.lastFaultComponent != "motor" {
		t.Fatalf("args not forwarded: %q/%q", diag.lastFaultID, diag.lastFaultComponent)
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["status"] != statusInjected || m["fault_id"] != "F30001" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if _, ok := m["diagnostics"]; !ok {
		t.Fatalf("expected diagnostics in response, got %s", w.Body.String())
	}

	// missing fields → 400
	w = protectedPost(r, "/api/v1/drive/faults", `{"fault_id":"F30001"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete body, got %d", w.Code)
	}

	// unknown fault id → 404
	diag.injectFaultErr = service.ErrFaultNotFound
	w = protectedPost(r, "/api/v1/drive/faults", `{"fault_id":"F99999","component":"motor"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown fault, got %d", w.Code)
	}

	// fault raised on the wrong component → 400
	diag.injectFaultErr = service.ErrComponentMismatch
	w = protectedPost(r, "/api/v1/drive/faults", `{"fault_id":"F30001","component":"fan"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for component mismatch, got %d", w.Code)
	}
}

func TestInjectAlarm_SuccessAndNotFound(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	diag := &mockDiagnostics{snapshot: sampleSnapshot()}
	s := &service.Service{Authorization: auth, Diagnostics: diag}
	r := newTestRouter(s)

	w := protectedPost(r, "/api/v1/drive/alarms", `{"alarm_id":"A05010","component":"fan"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if diag.lastAlarmID != "A05010" || diag.lastAlarmComponent != "fan" {
		t.Fatalf("args not forwarded: %q/%q", diag.lastAlarmID, diag.lastAlarmComponent)
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["status"] != statusInjected || m["alarm_id"] != "A05010" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	diag.injectAlarmErr = service.ErrAlarmNotFound
	w = protectedPost(r, "/api/v1/drive/alarms", `{"alarm_id":"A99999","component":"fan"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown alarm, got %d", w.Code)
	}
}

func TestClearAll_ReportsClearedSnapshot(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	diag := &mockDiagnostics{snapshot: sampleSnapshot()}
	s := &service.Service{Authorization: auth, Diagnostics: diag}
	r := newTestRouter(s)

	w := protectedPost(r, "/api/v1/drive/clear", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if diag.clearCalls != 1 {
		t.Fatalf("expected one ClearAll call, got %d", diag.clearCalls)
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["status"] != statusCleared {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPerformMaintenance_SuccessAndNotFound(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	now := time.Now().UTC().Truncate(time.Second)
	diag := &mockDiagnostics{
		snapshot: sampleSnapshot(),
		maintenanceRec: drive.MaintenanceRecord{
			ComponentID: "motor",
			Last:        now,
			Next:        now.Add(90 * 24 * time.Hour),
		},
	}
	s := &service.Service{Authorization: auth, Diagnostics: diag}
	r := newTestRouter(s)

	w := protectedPost(r, "/api/v1/drive/components/motor/maintenance", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if diag.lastMaintenanceID != "motor" {
		t.Fatalf("expected maintenance on motor, got %q", diag.lastMaintenanceID)
	}
	var out struct {
		Status string                  `json:"status"`
		Record drive.MaintenanceRecord `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Status != statusMaintenance || out.Record.ComponentID != "motor" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if !out.Record.Next.After(out.Record.Last) {
		t.Fatalf("next visit should follow the last: %+v", out.Record)
	}

	diag.maintenanceErr = service.ErrComponentNotFound
	w = protectedPost(r, "/api/v1/drive/components/nope/maintenance", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown component, got %d", w.Code)
	}
}
