package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"IMA_BACK-END/internal/dto"
	"IMA_BACK-END/internal/health"
	"IMA_BACK-END/internal/utils"
)

// HealthPathPrefix is where the health routes are mounted
const HealthPathPrefix = "/api/v1/health"

// HealthHandler handles health check related requests
type HealthHandler struct {
	aggregator *health.Aggregator
	logger     *zap.Logger
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(aggregator *health.Aggregator, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{aggregator: aggregator, logger: logger}
}

// ServerHealth handles the API server liveness check
// @Summary Server Health Check
// @Description Check if the API server is running and reachable.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthEnvelope
// @Router /api/v1/health/server [get]
func (h *HealthHandler) ServerHealth(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, "Server", health.ServerProbeName)
}

// DatabaseHealth handles the database connectivity check
// @Summary Database Health Check
// @Description Check connectivity to the PostgreSQL database.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthEnvelope
// @Failure 500 {object} dto.HealthEnvelope
// @Router /api/v1/health/database [get]
func (h *HealthHandler) DatabaseHealth(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, "Database", health.DatabaseProbeName)
}

// RedisHealth handles the cache connectivity check
// @Summary Redis Health Check
// @Description Check connectivity to the Redis cache.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthEnvelope
// @Failure 500 {object} dto.HealthEnvelope
// @Router /api/v1/health/redis [get]
func (h *HealthHandler) RedisHealth(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, "Redis", health.RedisProbeName)
}

// FullHealth handles the combined system health check
// @Summary Full System Health Check
// @Description Run combined health checks for server, database, and Redis.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthEnvelope
// @Router /api/v1/health/ [get]
func (h *HealthHandler) FullHealth(w http.ResponseWriter, r *http.Request) {
	// The prefix route is a subtree match in ServeMux
	if p := strings.TrimSuffix(r.URL.Path, "/"); p != HealthPathPrefix {
		NotFound(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}

	utils.WriteEnvelope(w, h.fullHealth(r.Context()))
}

func (h *HealthHandler) single(w http.ResponseWriter, r *http.Request, serviceName, probeName string) {
	if !allowGet(w, r) {
		return
	}

	probe, err := h.aggregator.Probe(probeName)
	if err != nil {
		h.logger.Error("health probe not registered", zap.String("probe", probeName), zap.Error(err))
		utils.WriteEnvelope(w, utils.Error(http.StatusInternalServerError,
			fmt.Sprintf("%s health check failed", serviceName),
			dto.HealthErrorDetails{Error: err.Error(), Details: map[string]string{probeName: health.StatusFail}}))
		return
	}

	utils.WriteEnvelope(w, h.checkHealth(r.Context(), serviceName, probe, probeName))
}

// checkHealth runs one probe and shapes the envelope. A probe that ran and
// found the dependency unhealthy is still a success; only a probe that could
// not run yields an error envelope.
func (h *HealthHandler) checkHealth(ctx context.Context, serviceName string, probe health.Probe, detailsKey string) utils.Envelope {
	result := h.aggregator.Run(ctx, probe)
	status := result.Status()

	var details map[string]string
	if detailsKey != "" {
		details = map[string]string{detailsKey: status}
	}

	switch result.Outcome {
	case health.OutcomeFailed:
		return utils.Error(http.StatusInternalServerError,
			fmt.Sprintf("%s health check failed", serviceName),
			dto.HealthErrorDetails{Error: result.Err.Error(), Details: details})
	case health.OutcomeHealthy:
		return utils.Success(dto.HealthData{Status: status, Details: details},
			fmt.Sprintf("%s health check passed", serviceName))
	default:
		return utils.Success(dto.HealthData{Status: status, Details: details},
			fmt.Sprintf("%s health check failed", serviceName))
	}
}

// fullHealth merges every registered probe. Per-dependency failures are data,
// so the envelope is always a success.
func (h *HealthHandler) fullHealth(ctx context.Context) utils.Envelope {
	report := h.aggregator.CheckAll(ctx)

	return utils.Success(dto.HealthData{Status: report.Status, Details: report.Details},
		"Full system health check completed")
}

// Root handles the service greeting
// @Summary Root
// @Description Confirms the service is running.
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router / [get]
func Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFound(w, r)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Hello World!"})
}

// NotFound writes a 404 error envelope
func NotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", fmt.Sprintf("no route for %s", r.URL.Path))
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed",
		fmt.Sprintf("%s is not supported on %s", r.Method, r.URL.Path))
	return false
}
