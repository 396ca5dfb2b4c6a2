package handlers

import (
	"errors"
	"net/http"

	"drive_diagnostics/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK          = "ok"
	statusInjected    = "injected"
	statusCleared     = "cleared"
	statusMaintenance = "maintenance_performed"

	errGetDetails      = "failed to load component details"
	errInjectFault     = "failed to inject fault"
	errInjectAlarm     = "failed to inject alarm"
	errMaintenance     = "failed to perform maintenance"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// engineErrorStatus maps engine errors onto HTTP status codes.
func engineErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrComponentNotFound),
		errors.Is(err, service.ErrFaultNotFound),
		errors.Is(err, service.ErrAlarmNotFound),
		errors.Is(err, service.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrComponentMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond with a status and the post-action diagnostic snapshot.
func (h *Handler) respondWithStatusAndSnapshot(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	resp["diagnostics"] = h.services.Diagnostics.Snapshot(ctx)
	c.JSON(http.StatusOK, resp)
}

// Request DTO for fault injection.
type injectFaultRequest struct {
	FaultID   string `json:"fault_id" binding:"required"`  // e.g. F30001
	Component string `json:"component" binding:"required"` // e.g. motor
}

// Request DTO for alarm injection.
type injectAlarmRequest struct {
	AlarmID   string `json:"alarm_id" binding:"required"`  // e.g. A05010
	Component string `json:"component" binding:"required"` // e.g. fan
}

// InjectFaultRequest is an exported model for Swagger docs of the fault payload.
type InjectFaultRequest struct {
	// Fault id from the catalog
	FaultID string `json:"fault_id" example:"F30001"`
	// Component the fault belongs to
	Component string `json:"component" example:"motor"`
}

// InjectAlarmRequest is an exported model for Swagger docs of the alarm payload.
type InjectAlarmRequest struct {
	// Alarm id from the catalog
	AlarmID string `json:"alarm_id" example:"A05010"`
	// Component the alarm belongs to
	Component string `json:"component" example:"fan"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Full diagnostic snapshot
// @Description  Active faults/alarms, per-component status, environment and system figures
// @Tags         drive
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/drive/diagnostics [get]
// @Security     BearerAuth
func (h *Handler) getDiagnostics(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, h.services.Diagnostics.Snapshot(ctx))
}

// @Summary      Component details
// @Description  Status, recent history series and trends for one component
// @Tags         drive
// @Produce      json
// @Param        id   path   string  true  "Component id"  Enums(rectifier,dc_link,inverter,motor,fan,cu320)
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/drive/components/{id} [get]
// @Security     BearerAuth
func (h *Handler) getComponentDetails(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	details, err := h.services.Diagnostics.ComponentDetails(ctx, id)
	if err != nil {
		h.logAndJSONError(c, engineErrorStatus(err), errGetDetails, "component_details_failed", err, "component", id)
		return
	}
	c.JSON(http.StatusOK, details)
}

// @Summary      Inject fault
// @Description  Manually raises a catalog fault on its component
// @Tags         drive
// @Accept       json
// @Produce      json
// @Param        body  body   InjectFaultRequest  true  "Fault payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/drive/faults [post]
// @Security     BearerAuth
func (h *Handler) injectFault(c *gin.Context) {
	var req injectFaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Diagnostics.InjectFault(ctx, req.FaultID, req.Component); err != nil {
		h.logAndJSONError(c, engineErrorStatus(err), errInjectFault, "inject_fault_failed", err,
			"fault", req.FaultID, "component", req.Component)
		return
	}
	h.respondWithStatusAndSnapshot(c, statusInjected, gin.H{"fault_id": req.FaultID})
}

// @Summary      Inject alarm
// @Description  Manually raises a catalog alarm on its component
// @Tags         drive
// @Accept       json
// @Produce      json
// @Param        body  body   InjectAlarmRequest  true  "Alarm payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/drive/alarms [post]
// @Security     BearerAuth
func (h *Handler) injectAlarm(c *gin.Context) {
	var req injectAlarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Diagnostics.InjectAlarm(ctx, req.AlarmID, req.Component); err != nil {
		h.logAndJSONError(c, engineErrorStatus(err), errInjectAlarm, "inject_alarm_failed", err,
			"alarm", req.AlarmID, "component", req.Component)
		return
	}
	h.respondWithStatusAndSnapshot(c, statusInjected, gin.H{"alarm_id": req.AlarmID})
}

// @Summary      Clear faults and alarms
// @Description  Acknowledges every active fault and alarm on all components
// @Tags         drive
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/drive/clear [post]
// @Security     BearerAuth
func (h *Handler) clearAll(c *gin.Context) {
	ctx := c.Request.Context()
	h.services.Diagnostics.ClearAll(ctx)
	h.respondWithStatusAndSnapshot(c, statusCleared, gin.H{})
}

// @Summary      Perform maintenance
// @Description  Services one component: restores health, clears its faults/alarms, schedules the next visit
// @Tags         drive
// @Produce      json
// @Param        id   path   string  true  "Component id"  Enums(rectifier,dc_link,inverter,motor,fan,cu320)
// @Success      200  {object}  map[string]interface{}  "status, record, diagnostics"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/drive/components/{id}/maintenance [post]
// @Security     BearerAuth
func (h *Handler) performMaintenance(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	rec, err := h.services.Diagnostics.PerformMaintenance(ctx, id)
	if err != nil {
		h.logAndJSONError(c, engineErrorStatus(err), errMaintenance, "maintenance_failed", err, "component", id)
		return
	}
	h.respondWithStatusAndSnapshot(c, statusMaintenance, gin.H{"record": rec})
}
