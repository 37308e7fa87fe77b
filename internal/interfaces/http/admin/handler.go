package admin

import (
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
)

// Handler wires coordinator HTTP endpoints to application services.
type Handler struct {
	logger   *log.Logger
	catalog  surveyapp.CatalogService
	results  surveyapp.ResultService
	validate *validator.Validate
}

// Config provides dependencies for Handler.
type Config struct {
	Logger  *log.Logger
	Catalog surveyapp.CatalogService
	Results surveyapp.ResultService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:   cfg.Logger,
		catalog:  cfg.Catalog,
		results:  cfg.Results,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register mounts admin routes onto router. The caller guards the group with
// authentication and the coordinator role.
func (h *Handler) Register(r chi.Router) {
	r.Get("/surveys", h.surveyListHandler())
	r.Get("/surveys/{id}", h.surveyDetailHandler())
	r.Post("/surveys", h.surveyCreateHandler())
	r.Patch("/surveys/{id}", h.surveyUpdateHandler())
	r.Put("/surveys/{id}/active", h.surveyActiveHandler())
	r.Delete("/surveys/{id}", h.surveyDeleteHandler())
	r.Get("/surveys/{id}/results", h.surveyResultsHandler())
}
