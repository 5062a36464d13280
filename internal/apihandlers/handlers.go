package apihandlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"soclisten/internal/app"
	"soclisten/internal/models"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// RootHandler reports that the service is up.
func (h *APIHandler) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Social Listening Platform API is running"})
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AnalyzeHandler runs the analysis pipeline and streams newline-delimited
// JSON events back to the caller: progress records while the pipeline works,
// then a single terminal complete or error record. A client that hangs up
// mid-stream cancels the request context, which the orchestrator notices at
// the next chunk boundary.
func (h *APIHandler) AnalyzeHandler(c *gin.Context) {
	req, err := parseAnalysisRequest(c, h.App.Config.Search.DefaultLimit)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	emit := func(ev models.StreamEvent) {
		// Writes after disconnect fail; the orchestrator exits on its own
		// at the next cancellation check, so the error is only logged.
		if err := enc.Encode(ev); err != nil {
			log.Debugf("dropping stream event, client gone: %v", err)
			return
		}
		c.Writer.Flush()
	}

	h.App.Orchestrator.Run(c.Request.Context(), req, emit)
}

// ResultsHandler returns every result analyzed since process start.
func (h *APIHandler) ResultsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.App.History.Snapshot())
}

// parseAnalysisRequest binds and validates the inbound request, applying the
// configured default limit when the caller omits one.
func parseAnalysisRequest(c *gin.Context, defaultLimit int) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if len(req.Keywords) == 0 {
		return req, fmt.Errorf("keywords must not be empty")
	}
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}
	if req.Limit < 1 {
		return req, fmt.Errorf("limit must be >= 1, got %d", req.Limit)
	}
	return req, nil
}
