package application

import (
	"context"
	"time"

	"github.com/bolsatrabajo/api/internal/survey/domain"
)

// SurveyRepository persists survey definitions. FindByID returns an
// apperror NotFound when the survey does not exist.
type SurveyRepository interface {
	Find(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error)
	FindByID(ctx context.Context, id string) (*domain.Survey, error)
	Create(ctx context.Context, survey *domain.Survey) error
	Update(ctx context.Context, survey *domain.Survey) error
	Delete(ctx context.Context, id string) error
}

// ResponseRepository persists survey responses. Create must enforce the
// (survey, company, student) uniqueness at the storage layer and report a
// violation as an apperror Duplicate with CodeDuplicateResponse.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	Exists(ctx context.Context, key domain.ResponseKey) (bool, error)
	CompletedStudents(ctx context.Context, surveyID, companyID string) (map[string]struct{}, error)
	CountBySurvey(ctx context.Context, surveyID string) (int, error)
	DeleteBySurvey(ctx context.Context, surveyID string) error
}

// HiringLedger is the read-only view over hired applications.
type HiringLedger interface {
	HiresByCompany(ctx context.Context, companyID string) ([]domain.HiringRecord, error)
}

// ResultRepository computes aggregated ratings for the coordinator report.
type ResultRepository interface {
	Summarize(ctx context.Context, survey domain.Survey) (*domain.SurveyResults, error)
}

// SurveyFilter expresses catalog search criteria.
type SurveyFilter struct {
	ActiveOnly bool
	Keyword    string
}

// Options tunes the eligibility-dependent services.
type Options struct {
	// HiringPolicy collapses repeated hires of one student by one company.
	HiringPolicy domain.HiringPolicy
	// EnforceWindow rejects responses for students outside their window.
	EnforceWindow bool
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) policy() domain.HiringPolicy {
	if o.HiringPolicy == "" {
		return domain.HiringPolicyLatest
	}
	return o.HiringPolicy
}

// CatalogService describes coordinator survey use-cases.
type CatalogService interface {
	List(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error)
	Detail(ctx context.Context, id string) (*domain.Survey, error)
	Create(ctx context.Context, cmd UpsertSurveyCommand) (*domain.Survey, error)
	Update(ctx context.Context, id string, cmd UpsertSurveyCommand) (*domain.Survey, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Survey, error)
	Delete(ctx context.Context, id string) error
}

// CompanySurveyService lists surveys with per-company eligibility counts.
type CompanySurveyService interface {
	ListForCompany(ctx context.Context, companyID string, now time.Time) (*CompanySurveyList, error)
}

// NotificationService aggregates pending counts for a company.
type NotificationService interface {
	PendingSurveys(ctx context.Context, companyID string, now time.Time) (*domain.PendingSummary, error)
}

// ResponseService records survey responses.
type ResponseService interface {
	Submit(ctx context.Context, cmd SubmitResponseCommand) (*domain.Response, error)
}

// ResultService builds the coordinator report of a survey.
type ResultService interface {
	Summarize(ctx context.Context, surveyID string) (*domain.SurveyResults, error)
}

// UpsertSurveyCommand contains inputs for creating/updating surveys.
type UpsertSurveyCommand struct {
	Title           string
	Description     string
	IsActive        *bool
	DaysAfterHiring int
	SurveyDuration  int
	Questions       []QuestionCommand
}

// QuestionCommand is one question of UpsertSurveyCommand. ID is kept on update
// when it names an existing question so stored answers stay linked.
type QuestionCommand struct {
	ID         string
	Question   string
	Order      int
	IsRequired bool
}

// SubmitResponseCommand captures a company's evaluation of a student.
type SubmitResponseCommand struct {
	SurveyID    string
	CompanyID   string
	StudentID   string
	Answers     map[string]int
	Comments    string
	SubmittedBy string
}

// CompanySurvey is a survey with its evaluation for one company.
type CompanySurvey struct {
	Survey     domain.Survey
	Evaluation domain.Evaluation
}

// CompanySurveyList is the company-facing survey listing.
type CompanySurveyList struct {
	Surveys  []CompanySurvey
	Students []domain.Student
}
