package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"IMA_BACK-END/internal/handlers"
)

// SetupRoutes configures all application routes on mux
func SetupRoutes(mux *http.ServeMux, healthHandler *handlers.HealthHandler, metricsHandler http.Handler) {
	// Health check routes
	mux.HandleFunc(handlers.HealthPathPrefix+"/server", healthHandler.ServerHealth)
	mux.HandleFunc(handlers.HealthPathPrefix+"/database", healthHandler.DatabaseHealth)
	mux.HandleFunc(handlers.HealthPathPrefix+"/redis", healthHandler.RedisHealth)
	mux.HandleFunc(handlers.HealthPathPrefix+"/", healthHandler.FullHealth)
	mux.HandleFunc(handlers.HealthPathPrefix, healthHandler.FullHealth)

	// Operational routes
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Root route, also the fallback for unknown paths
	mux.HandleFunc("/", handlers.Root)
}
