package application

import (
	"context"
	"time"

	"github.com/bolsatrabajo/api/internal/survey/domain"
)

// evaluator runs the eligibility engine over every active survey for one
// company. Hires are loaded once per call and collapsed by policy.
type evaluator struct {
	surveys   SurveyRepository
	responses ResponseRepository
	hiring    HiringLedger
	opts      Options
}

type evaluated struct {
	survey domain.Survey
	eval   domain.Evaluation
}

func (e *evaluator) run(ctx context.Context, companyID string, now time.Time) ([]evaluated, []domain.HiringRecord, error) {
	surveys, err := e.surveys.Find(ctx, SurveyFilter{ActiveOnly: true})
	if err != nil {
		return nil, nil, err
	}
	records, err := e.hiring.HiresByCompany(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	hires := domain.CollapseHires(records, e.opts.policy())

	result := make([]evaluated, 0, len(surveys))
	for _, survey := range surveys {
		completed, err := e.responses.CompletedStudents(ctx, survey.ID, companyID)
		if err != nil {
			return nil, nil, err
		}
		result = append(result, evaluated{
			survey: survey,
			eval:   domain.Evaluate(survey, companyID, hires, completed, now),
		})
	}
	return result, hires, nil
}

// companySurveyService implements CompanySurveyService.
type companySurveyService struct {
	evaluator
}

func NewCompanySurveyService(surveys SurveyRepository, responses ResponseRepository, hiring HiringLedger, opts Options) CompanySurveyService {
	return &companySurveyService{evaluator{surveys: surveys, responses: responses, hiring: hiring, opts: opts}}
}

func (s *companySurveyService) ListForCompany(ctx context.Context, companyID string, now time.Time) (*CompanySurveyList, error) {
	evaluations, hires, err := s.run(ctx, companyID, now)
	if err != nil {
		return nil, err
	}
	list := &CompanySurveyList{
		Surveys:  make([]CompanySurvey, 0, len(evaluations)),
		Students: domain.DistinctStudents(hires),
	}
	for _, e := range evaluations {
		list.Surveys = append(list.Surveys, CompanySurvey{Survey: e.survey, Evaluation: e.eval})
	}
	return list, nil
}

// notificationService implements NotificationService.
type notificationService struct {
	evaluator
}

func NewNotificationService(surveys SurveyRepository, responses ResponseRepository, hiring HiringLedger, opts Options) NotificationService {
	return &notificationService{evaluator{surveys: surveys, responses: responses, hiring: hiring, opts: opts}}
}

// PendingSurveys lists the active surveys with at least one pending student.
// TotalPendingSurveys is the sum of their pending counts.
func (s *notificationService) PendingSurveys(ctx context.Context, companyID string, now time.Time) (*domain.PendingSummary, error) {
	evaluations, _, err := s.run(ctx, companyID, now)
	if err != nil {
		return nil, err
	}
	summary := &domain.PendingSummary{SurveysWithPending: make([]domain.PendingSurvey, 0)}
	for _, e := range evaluations {
		if e.eval.PendingCount == 0 {
			continue
		}
		summary.SurveysWithPending = append(summary.SurveysWithPending, domain.PendingSurvey{
			ID:           e.survey.ID,
			Title:        e.survey.Title,
			PendingCount: e.eval.PendingCount,
		})
		summary.TotalPendingSurveys += e.eval.PendingCount
	}
	return summary, nil
}
