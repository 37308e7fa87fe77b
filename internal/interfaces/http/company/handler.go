package company

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
)

// Handler wires company-facing survey endpoints to application services.
type Handler struct {
	logger        *log.Logger
	surveys       surveyapp.CompanySurveyService
	notifications surveyapp.NotificationService
	responses     surveyapp.ResponseService
	now           func() time.Time
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger        *log.Logger
	Surveys       surveyapp.CompanySurveyService
	Notifications surveyapp.NotificationService
	Responses     surveyapp.ResponseService
	Now           func() time.Time
}

// NewHandler constructs a company HTTP handler set.
func NewHandler(cfg Config) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		logger:        cfg.Logger,
		surveys:       cfg.Surveys,
		notifications: cfg.Notifications,
		responses:     cfg.Responses,
		now:           now,
	}
}

// Register mounts the survey routes. Every route requires authentication.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/surveys", h.surveyListHandler())
		r.Get("/surveys/notifications", h.notificationHandler())
		r.Post("/surveys/{id}/responses", h.responseCreateHandler())
	})
}
