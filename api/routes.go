package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/candidatures/internal/config"
	"github.com/garnizeh/candidatures/internal/tracker"
)

// SetupRoutes builds the router. backups may be nil when snapshots are disabled.
func SetupRoutes(cfg *config.Config, version, buildTime string, svc *tracker.Service, backups BackupStore) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(SecurityHeadersMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(svc, cfg.JWTSecret, cfg.TokenDuration)
	appsHandler := NewApplicationsHandler(svc)
	catalogHandler := NewCatalogHandler(svc)
	transferHandler := NewTransferHandler(svc)
	profileHandler := NewProfileHandler(svc)
	backupsHandler := NewBackupsHandler(backups)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/template/csv", systemHandler.CSVTemplateHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Applications endpoints
	apiV1.HandleFunc("/applications", appsHandler.List).Methods("GET")
	apiV1.HandleFunc("/applications", appsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/applications/search", appsHandler.Search).Methods("GET")
	apiV1.HandleFunc("/applications/{id:[0-9]+}", appsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/applications/{id:[0-9]+}", appsHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/applications/{id:[0-9]+}", appsHandler.Delete).Methods("DELETE")
	apiV1.HandleFunc("/applications/{id:[0-9]+}/follow-ups", appsHandler.FollowUp).Methods("POST")

	// Certifications and skills endpoints
	apiV1.HandleFunc("/certifications", catalogHandler.ListCertifications).Methods("GET")
	apiV1.HandleFunc("/certifications", catalogHandler.CreateCertification).Methods("POST")
	apiV1.HandleFunc("/certifications/{id:[0-9]+}", catalogHandler.DeleteCertification).Methods("DELETE")
	apiV1.HandleFunc("/skills", catalogHandler.ListSkills).Methods("GET")
	apiV1.HandleFunc("/skills", catalogHandler.AddSkill).Methods("POST")
	apiV1.HandleFunc("/skills/reset", catalogHandler.ResetSkills).Methods("POST")
	apiV1.HandleFunc("/skills/{name}", catalogHandler.DeleteSkill).Methods("DELETE")

	// Stats, export and import endpoints
	apiV1.HandleFunc("/stats", transferHandler.Stats).Methods("GET")
	apiV1.HandleFunc("/stats/advanced", transferHandler.AdvancedStats).Methods("GET")
	apiV1.HandleFunc("/export/csv", transferHandler.ExportCSV).Methods("GET")
	apiV1.HandleFunc("/export/json", transferHandler.ExportJSON).Methods("GET")
	apiV1.HandleFunc("/import", transferHandler.Import).Methods("POST")

	// Backups endpoints
	apiV1.HandleFunc("/backups", backupsHandler.List).Methods("GET")
	apiV1.HandleFunc("/backups", backupsHandler.Create).Methods("POST")

	// Profile endpoints
	apiV1.HandleFunc("/profile", profileHandler.Get).Methods("GET")
	apiV1.HandleFunc("/profile", profileHandler.UpdateContact).Methods("PUT")
	apiV1.HandleFunc("/profile/password", profileHandler.ChangePassword).Methods("PUT")

	return r
}
