package application

import (
	"context"
	"strings"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/survey/domain"
)

// responseService implements ResponseService.
type responseService struct {
	surveys   SurveyRepository
	responses ResponseRepository
	hiring    HiringLedger
	opts      Options
}

func NewResponseService(surveys SurveyRepository, responses ResponseRepository, hiring HiringLedger, opts Options) ResponseService {
	return &responseService{surveys: surveys, responses: responses, hiring: hiring, opts: opts}
}

// Submit validates everything before writing. The Exists lookup is only a
// fast path; the repository's unique index decides concurrent submissions.
func (s *responseService) Submit(ctx context.Context, cmd SubmitResponseCommand) (*domain.Response, error) {
	cmd.CompanyID = strings.TrimSpace(cmd.CompanyID)
	cmd.StudentID = strings.TrimSpace(cmd.StudentID)
	if cmd.CompanyID == "" || cmd.StudentID == "" {
		return nil, apperror.Validation(apperror.CodeInvalidAnswers, "companyId and studentId are required")
	}

	survey, err := s.surveys.FindByID(ctx, cmd.SurveyID)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive {
		return nil, apperror.Validation(apperror.CodeSurveyInactive, "survey is not active")
	}

	answers, err := buildAnswers(*survey, cmd.Answers)
	if err != nil {
		return nil, err
	}
	comments, err := domain.NewComments(cmd.Comments)
	if err != nil {
		return nil, err
	}

	records, err := s.hiring.HiresByCompany(ctx, cmd.CompanyID)
	if err != nil {
		return nil, err
	}
	hires := domain.CollapseHires(records, s.opts.policy())
	if !hiredStudent(hires, cmd.StudentID) {
		return nil, apperror.Validation(apperror.CodeNotHired, "student is not hired by company")
	}
	now := s.opts.now()
	if s.opts.EnforceWindow && !domain.IsEligible(*survey, cmd.StudentID, hires, now) {
		return nil, apperror.Validation(apperror.CodeNotEligible, "student is outside the survey window")
	}

	response := &domain.Response{
		SurveyID:    survey.ID,
		CompanyID:   cmd.CompanyID,
		StudentID:   cmd.StudentID,
		IsCompleted: true,
		Comments:    comments,
		Answers:     answers,
		SubmittedBy: cmd.SubmittedBy,
		CreatedAt:   now,
	}

	exists, err := s.responses.Exists(ctx, response.Key())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Duplicate(apperror.CodeDuplicateResponse, nil)
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

// buildAnswers checks ratings first so an out-of-range value is reported as
// InvalidRating regardless of the other answers.
func buildAnswers(survey domain.Survey, raw map[string]int) ([]domain.Answer, error) {
	ratings := make(map[string]domain.Rating, len(raw))
	for questionID, value := range raw {
		rating, err := domain.NewRating(value)
		if err != nil {
			return nil, err
		}
		ratings[questionID] = rating
	}

	for questionID := range ratings {
		if _, ok := survey.QuestionByID(questionID); !ok {
			return nil, apperror.Validation(apperror.CodeInvalidAnswers, "unknown question: "+questionID)
		}
	}

	answers := make([]domain.Answer, 0, len(ratings))
	for _, q := range survey.Questions {
		rating, ok := ratings[q.ID]
		if !ok {
			if q.IsRequired {
				return nil, apperror.Validation(apperror.CodeInvalidAnswers, "required question not answered: "+q.ID)
			}
			continue
		}
		answers = append(answers, domain.Answer{QuestionID: q.ID, Rating: rating})
	}
	return answers, nil
}

func hiredStudent(hires []domain.HiringRecord, studentID string) bool {
	for _, h := range hires {
		if h.StudentID == studentID {
			return true
		}
	}
	return false
}
