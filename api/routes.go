package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/internal/search"
	"github.com/garnizeh/eduverify/internal/skills"
	"github.com/garnizeh/eduverify/internal/verification"
	"github.com/garnizeh/eduverify/pkg/repository"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, store repository.Directory, suggester *skills.Suggester) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(TimeoutMiddleware(cfg.APITimeout))

	// Services
	engine := search.New(store, logger)
	verifier := verification.NewService(store, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(store, cfg.JWTSecret, cfg.TokenDuration)
	candidatesHandler := NewCandidatesHandler(engine)
	directoryHandler := NewDirectoryHandler(store)
	verificationsHandler := NewVerificationsHandler(store, verifier)
	skillsHandler := NewSkillsHandler(suggester)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Search
	apiV1.HandleFunc("/candidates", candidatesHandler.Search).Methods("GET")

	// Directory
	apiV1.HandleFunc("/profiles", directoryHandler.ListProfiles).Methods("GET")
	apiV1.HandleFunc("/profiles/{userId}", directoryHandler.GetProfile).Methods("GET")
	apiV1.HandleFunc("/users/{id}", directoryHandler.GetUser).Methods("GET")
	apiV1.HandleFunc("/jobs", directoryHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/projects/{id}", directoryHandler.GetProject).Methods("GET")

	// Verifications
	apiV1.HandleFunc("/projects/{id}/verifications", verificationsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/verifications/pending", verificationsHandler.Pending).Methods("GET")

	// Skills
	apiV1.HandleFunc("/skills/suggestions", skillsHandler.Suggest).Methods("POST")

	return r
}
