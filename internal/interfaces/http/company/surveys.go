package company

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/interfaces/http/common"
	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
)

// companyFor resolves the company a request acts for from the caller and the
// companyId it named.
func companyFor(r *http.Request, requested string) (common.Identity, string, error) {
	identity, ok := common.IdentityFromContext(r.Context())
	if !ok || identity.ID == "" {
		return common.Identity{}, "", apperror.Unauthenticated("")
	}
	companyID, ok := common.ResolveCompanyID(identity, strings.TrimSpace(requested))
	if !ok {
		if identity.Role == common.RoleCoordinator && strings.TrimSpace(requested) == "" {
			return identity, "", apperror.Validation(apperror.CodeInvalidRequest, "companyId is required")
		}
		return identity, "", apperror.Forbidden()
	}
	return identity, companyID, nil
}

func (h *Handler) surveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, companyID, err := companyFor(r, r.URL.Query().Get("companyId"))
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := h.surveys.ListForCompany(ctx, companyID, h.now())
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toCompanySurveyList(list))
	}
}

func (h *Handler) notificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, companyID, err := companyFor(r, r.URL.Query().Get("companyId"))
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		summary, err := h.notifications.PendingSurveys(ctx, companyID, h.now())
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, summary)
	}
}

func (h *Handler) responseCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := strings.TrimSpace(chi.URLParam(r, "id"))

		var req createResponseRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteError(h.logger, w, r, apperror.Validation(apperror.CodeInvalidRequest, "body must be a JSON object"))
			return
		}

		identity, companyID, err := companyFor(r, req.CompanyID)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		response, err := h.responses.Submit(ctx, surveyapp.SubmitResponseCommand{
			SurveyID:    surveyID,
			CompanyID:   companyID,
			StudentID:   req.StudentID,
			Answers:     req.Answers,
			Comments:    req.Comments,
			SubmittedBy: identity.ID,
		})
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		h.logger.Printf("survey response recorded survey=%s company=%s student=%s", response.SurveyID, response.CompanyID, response.StudentID)
		common.WriteJSON(h.logger, w, http.StatusCreated, toSurveyResponse(response))
	}
}
