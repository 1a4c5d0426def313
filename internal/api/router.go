package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hackgods/interview-scheduling/internal/auth"
	"github.com/hackgods/interview-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Slots          *scheduling.SlotStore
	Matcher        *scheduling.Matcher
	Booking        *scheduling.Coordinator
	Tokens         *auth.Tokens
	Dependencies   []Dependency
	Logger         *zap.Logger
	RequestTimeout time.Duration
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := handlerDeps{
		slots:   cfg.Slots,
		matcher: cfg.Matcher,
		booking: cfg.Booking,
		log:     log,
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(AuthMiddleware(cfg.Tokens))

		r.Route("/availability", func(r chi.Router) {
			r.Get("/interviewer/{id}", listSlotsHandler(d))
			r.Post("/interviewer/{id}", createSlotHandler(d))
			r.Delete("/{slotId}", deleteSlotHandler(d))
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Put("/cancel/{interviewId}", cancelInterviewHandler(d))
			r.Get("/interviewer/{id}", interviewerScheduleHandler(d))
			r.Get("/{interviewId}", getInterviewHandler(d))

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(auth.RoleAdmin, auth.RoleHR))
				r.Post("/search", searchHandler(d))
				r.Post("/create", createInterviewHandler(d))
				r.Get("/all", allInterviewsHandler(d))
			})
		})
	})

	return r
}
