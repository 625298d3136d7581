package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/virtual-events/internal/config"
	"github.com/Shivanand-hulikatti/virtual-events/internal/metrics"
	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
	"github.com/Shivanand-hulikatti/virtual-events/internal/service"
)

// RouterDeps carries everything NewRouter wires into the HTTP surface.
type RouterDeps struct {
	Users     *service.UserService
	Events    *service.EventService
	Tokens    TokenVerifier
	Logger    zerolog.Logger
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig

	// TrustProxy enables chi's RealIP so the access log and the login
	// throttle see the forwarded client address.
	TrustProxy bool
}

// NewRouter builds the chi router with the global middleware stack and every route.
func NewRouter(deps RouterDeps) http.Handler {
	authHandler := NewAuthHandler(deps.Users)
	eventHandler := NewEventHandler(deps.Events)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.RequestID) // attach request IDs
	if deps.TrustProxy {
		r.Use(chimiddleware.RealIP) // trust X-Forwarded-For
	}
	r.Use(Logger(deps.Logger))     // structured access log
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(Metrics)                 // per-route counters and latency
	r.Use(CORS(deps.CORS))

	r.Get("/health", HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/register", authHandler.Register)
	r.With(RateLimit(deps.RateLimit.LoginPerMinute)).Post("/login", authHandler.Login)

	r.Route("/events", func(r chi.Router) {
		r.Use(Authenticate(deps.Tokens))

		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Post("/{id}/register", eventHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(model.RoleOrganizer))
			r.Post("/", eventHandler.CreateEvent)
			r.Put("/{id}", eventHandler.UpdateEvent)
			r.Delete("/{id}", eventHandler.DeleteEvent)
		})
	})

	return r
}
