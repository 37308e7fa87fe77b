package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/interfaces/http/common"
	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
)

// decode reads a JSON body into dst and runs the struct validation tags.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(dst); err != nil {
		return apperror.Validation(apperror.CodeInvalidRequest, "body must be a JSON object")
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return apperror.Validation(apperror.CodeInvalidSurvey, fmt.Sprintf("%s failed %s", first.Namespace(), first.Tag()))
		}
		return apperror.Wrap(apperror.KindValidation, apperror.CodeInvalidSurvey, err)
	}
	return nil
}

func surveyID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func (h *Handler) surveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := surveyapp.SurveyFilter{
			Keyword:    query.Get("keyword"),
			ActiveOnly: query.Get("active") == "true",
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		surveys, err := h.catalog.List(ctx, filter)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		items := make([]adminSurveyResponse, 0, len(surveys))
		for _, survey := range surveys {
			items = append(items, toAdminSurvey(survey))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, adminSurveyListResponse{Items: items})
	}
}

func (h *Handler) surveyDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		survey, err := h.catalog.Detail(ctx, surveyID(r))
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toAdminSurvey(*survey))
	}
}

func (h *Handler) surveyCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSurveyRequest
		if err := h.decode(r, &req); err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		survey, err := h.catalog.Create(ctx, req.command())
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		h.logger.Printf("survey created id=%s questions=%d", survey.ID, len(survey.Questions))
		common.WriteJSON(h.logger, w, http.StatusCreated, toAdminSurvey(*survey))
	}
}

func (h *Handler) surveyUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := surveyID(r)

		var req updateSurveyRequest
		if err := h.decode(r, &req); err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		existing, err := h.catalog.Detail(ctx, id)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		cmd := commandFromSurvey(*existing)
		applyUpdateRequest(req, &cmd)

		updated, err := h.catalog.Update(ctx, id, cmd)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toAdminSurvey(*updated))
	}
}

func (h *Handler) surveyActiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setActiveRequest
		if err := h.decode(r, &req); err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		survey, err := h.catalog.SetActive(ctx, surveyID(r), *req.IsActive)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toAdminSurvey(*survey))
	}
}

func (h *Handler) surveyDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := surveyID(r)

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := h.catalog.Delete(ctx, id); err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		h.logger.Printf("survey deleted id=%s", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) surveyResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		results, err := h.results.Summarize(ctx, surveyID(r))
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, results)
	}
}
