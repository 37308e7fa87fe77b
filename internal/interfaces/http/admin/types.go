package admin

import (
	"time"

	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
)

type questionRequest struct {
	ID         string `json:"id,omitempty"`
	Question   string `json:"question" validate:"required"`
	Order      int    `json:"order" validate:"gte=0"`
	IsRequired bool   `json:"isRequired"`
}

type createSurveyRequest struct {
	Title           string            `json:"title" validate:"required"`
	Description     string            `json:"description"`
	IsActive        *bool             `json:"isActive"`
	DaysAfterHiring *int              `json:"daysAfterHiring" validate:"required"`
	SurveyDuration  *int              `json:"surveyDuration" validate:"required"`
	Questions       []questionRequest `json:"questions" validate:"required,min=1,dive"`
}

// updateSurveyRequest is a partial update; omitted fields keep their value.
type updateSurveyRequest struct {
	Title           *string            `json:"title" validate:"omitempty,min=1"`
	Description     *string            `json:"description"`
	IsActive        *bool              `json:"isActive"`
	DaysAfterHiring *int               `json:"daysAfterHiring"`
	SurveyDuration  *int               `json:"surveyDuration"`
	Questions       *[]questionRequest `json:"questions" validate:"omitempty,min=1,dive"`
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type adminQuestionResponse struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Order      int    `json:"order"`
	IsRequired bool   `json:"isRequired"`
}

type adminSurveyResponse struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description,omitempty"`
	IsActive        bool                    `json:"isActive"`
	DaysAfterHiring int                     `json:"daysAfterHiring"`
	SurveyDuration  int                     `json:"surveyDuration"`
	Questions       []adminQuestionResponse `json:"questions"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

type adminSurveyListResponse struct {
	Items []adminSurveyResponse `json:"items"`
}

func toAdminSurvey(survey surveydomain.Survey) adminSurveyResponse {
	questions := make([]adminQuestionResponse, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		questions = append(questions, adminQuestionResponse{ID: q.ID, Question: q.Question, Order: q.Order, IsRequired: q.IsRequired})
	}
	return adminSurveyResponse{
		ID:              survey.ID,
		Title:           survey.Title,
		Description:     survey.Description,
		IsActive:        survey.IsActive,
		DaysAfterHiring: survey.DaysAfterHiring,
		SurveyDuration:  survey.SurveyDuration,
		Questions:       questions,
		CreatedAt:       survey.CreatedAt,
		UpdatedAt:       survey.UpdatedAt,
	}
}

func toQuestionCommands(questions []questionRequest) []surveyapp.QuestionCommand {
	result := make([]surveyapp.QuestionCommand, 0, len(questions))
	for _, q := range questions {
		result = append(result, surveyapp.QuestionCommand{ID: q.ID, Question: q.Question, Order: q.Order, IsRequired: q.IsRequired})
	}
	return result
}

func (req createSurveyRequest) command() surveyapp.UpsertSurveyCommand {
	return surveyapp.UpsertSurveyCommand{
		Title:           req.Title,
		Description:     req.Description,
		IsActive:        req.IsActive,
		DaysAfterHiring: *req.DaysAfterHiring,
		SurveyDuration:  *req.SurveyDuration,
		Questions:       toQuestionCommands(req.Questions),
	}
}

// commandFromSurvey restates a stored survey as an upsert command so a
// partial update can be applied on top of it.
func commandFromSurvey(survey surveydomain.Survey) surveyapp.UpsertSurveyCommand {
	questions := make([]surveyapp.QuestionCommand, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		questions = append(questions, surveyapp.QuestionCommand{ID: q.ID, Question: q.Question, Order: q.Order, IsRequired: q.IsRequired})
	}
	return surveyapp.UpsertSurveyCommand{
		Title:           survey.Title,
		Description:     survey.Description,
		DaysAfterHiring: survey.DaysAfterHiring,
		SurveyDuration:  survey.SurveyDuration,
		Questions:       questions,
	}
}

func applyUpdateRequest(req updateSurveyRequest, cmd *surveyapp.UpsertSurveyCommand) {
	if req.Title != nil {
		cmd.Title = *req.Title
	}
	if req.Description != nil {
		cmd.Description = *req.Description
	}
	if req.IsActive != nil {
		cmd.IsActive = req.IsActive
	}
	if req.DaysAfterHiring != nil {
		cmd.DaysAfterHiring = *req.DaysAfterHiring
	}
	if req.SurveyDuration != nil {
		cmd.SurveyDuration = *req.SurveyDuration
	}
	if req.Questions != nil {
		cmd.Questions = toQuestionCommands(*req.Questions)
	}
}
