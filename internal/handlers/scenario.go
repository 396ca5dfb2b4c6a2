package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusScenarioStarted = "scenario_started"
	statusScenarioStopped = "scenario_stopped"
	statusNoScenario      = "no_scenario_running"

	errStartScenario = "failed to start scenario"
)

// Request DTO for starting a scenario. Empty or missing name picks one at random.
type startScenarioRequest struct {
	Name string `json:"name"`
}

// StartScenarioRequest is an exported model for Swagger docs of the start payload.
type StartScenarioRequest struct {
	// Scenario name; empty picks a random one
	Name string `json:"name" example:"Motor Overload"`
}

// @Summary      List scenarios
// @Tags         scenarios
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, scenarios"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/scenarios [get]
// @Security     BearerAuth
func (h *Handler) getScenarios(c *gin.Context) {
	ctx := c.Request.Context()
	scenarios := h.services.Scenarios.Available(ctx)
	c.JSON(http.StatusOK, gin.H{
		"count":     len(scenarios),
		"scenarios": scenarios,
	})
}

// @Summary      Current scenario
// @Tags         scenarios
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/scenarios/current [get]
// @Security     BearerAuth
func (h *Handler) getCurrentScenario(c *gin.Context) {
	ctx := c.Request.Context()
	cur := h.services.Scenarios.Current(ctx)
	if cur == nil {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}
	c.JSON(http.StatusOK, cur)
}

// @Summary      Start scenario
// @Description  Launches a scripted fault timeline; a running one is replaced
// @Tags         scenarios
// @Accept       json
// @Produce      json
// @Param        body  body   StartScenarioRequest  false  "Scenario payload"
// @Success      200   {object}  map[string]interface{}  "status, scenario"
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/scenarios/start [post]
// @Security     BearerAuth
func (h *Handler) startScenario(c *gin.Context) {
	var req startScenarioRequest
	// body is optional; ignore EOF on empty payloads
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	info, err := h.services.Scenarios.Start(ctx, req.Name)
	if err != nil {
		h.logAndJSONError(c, engineErrorStatus(err), errStartScenario, "scenario_start_failed", err, "name", req.Name)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   statusScenarioStarted,
		"scenario": info,
	})
}

// @Summary      Stop scenario
// @Description  Aborts the running scenario; already-raised faults/alarms stay active
// @Tags         scenarios
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/scenarios/stop [post]
// @Security     BearerAuth
func (h *Handler) stopScenario(c *gin.Context) {
	ctx := c.Request.Context()
	info, stopped := h.services.Scenarios.Stop(ctx)
	if !stopped {
		c.JSON(http.StatusOK, gin.H{"status": statusNoScenario})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   statusScenarioStopped,
		"scenario": info,
	})
}
