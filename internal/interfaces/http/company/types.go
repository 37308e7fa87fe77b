package company

import (
	"time"

	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
)

type questionResponse struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Order      int    `json:"order"`
	IsRequired bool   `json:"isRequired"`
}

type companySurveyResponse struct {
	ID                     string                 `json:"id"`
	Title                  string                 `json:"title"`
	Description            string                 `json:"description,omitempty"`
	IsActive               bool                   `json:"isActive"`
	DaysAfterHiring        int                    `json:"daysAfterHiring"`
	SurveyDuration         int                    `json:"surveyDuration"`
	Questions              []questionResponse     `json:"questions"`
	PendingCount           int                    `json:"pendingCount"`
	CompletedCount         int                    `json:"completedCount"`
	CompletedEligibleCount int                    `json:"completedEligibleCount"`
	TotalStudents          int                    `json:"totalStudents"`
	PendingStudents        []surveydomain.Student `json:"pendingStudents"`
}

type companySurveyListResponse struct {
	Surveys  []companySurveyResponse `json:"surveys"`
	Students []surveydomain.Student  `json:"students"`
}

type createResponseRequest struct {
	CompanyID string         `json:"companyId"`
	StudentID string         `json:"studentId"`
	Answers   map[string]int `json:"answers"`
	Comments  string         `json:"comments,omitempty"`
}

type answerResponse struct {
	QuestionID string `json:"questionId"`
	Rating     int    `json:"rating"`
}

type surveyResponseResponse struct {
	ID          string           `json:"id"`
	SurveyID    string           `json:"surveyId"`
	CompanyID   string           `json:"companyId"`
	StudentID   string           `json:"studentId"`
	IsCompleted bool             `json:"isCompleted"`
	Comments    string           `json:"comments,omitempty"`
	Answers     []answerResponse `json:"answers"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func toCompanySurveyList(list *surveyapp.CompanySurveyList) companySurveyListResponse {
	result := companySurveyListResponse{
		Surveys:  make([]companySurveyResponse, 0, len(list.Surveys)),
		Students: append([]surveydomain.Student{}, list.Students...),
	}
	for _, item := range list.Surveys {
		result.Surveys = append(result.Surveys, toCompanySurvey(item))
	}
	return result
}

func toCompanySurvey(item surveyapp.CompanySurvey) companySurveyResponse {
	questions := make([]questionResponse, 0, len(item.Survey.Questions))
	for _, q := range item.Survey.Questions {
		questions = append(questions, questionResponse{ID: q.ID, Question: q.Question, Order: q.Order, IsRequired: q.IsRequired})
	}
	return companySurveyResponse{
		ID:                     item.Survey.ID,
		Title:                  item.Survey.Title,
		Description:            item.Survey.Description,
		IsActive:               item.Survey.IsActive,
		DaysAfterHiring:        item.Survey.DaysAfterHiring,
		SurveyDuration:         item.Survey.SurveyDuration,
		Questions:              questions,
		PendingCount:           item.Evaluation.PendingCount,
		CompletedCount:         item.Evaluation.CompletedCount,
		CompletedEligibleCount: item.Evaluation.CompletedEligibleCount,
		TotalStudents:          item.Evaluation.TotalStudents,
		PendingStudents:        item.Evaluation.PendingStudents(),
	}
}

func toSurveyResponse(response *surveydomain.Response) surveyResponseResponse {
	answers := make([]answerResponse, 0, len(response.Answers))
	for _, a := range response.Answers {
		answers = append(answers, answerResponse{QuestionID: a.QuestionID, Rating: a.Rating.Int()})
	}
	return surveyResponseResponse{
		ID:          response.ID,
		SurveyID:    response.SurveyID,
		CompanyID:   response.CompanyID,
		StudentID:   response.StudentID,
		IsCompleted: response.IsCompleted,
		Comments:    response.Comments,
		Answers:     answers,
		CreatedAt:   response.CreatedAt,
	}
}
