package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/survey/domain"
)

// catalogService implements CatalogService.
type catalogService struct {
	surveys   SurveyRepository
	responses ResponseRepository
	opts      Options
}

func NewCatalogService(surveys SurveyRepository, responses ResponseRepository, opts Options) CatalogService {
	return &catalogService{surveys: surveys, responses: responses, opts: opts}
}

func (s *catalogService) List(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.surveys.Find(ctx, filter)
}

func (s *catalogService) Detail(ctx context.Context, id string) (*domain.Survey, error) {
	return s.surveys.FindByID(ctx, id)
}

func (s *catalogService) Create(ctx context.Context, cmd UpsertSurveyCommand) (*domain.Survey, error) {
	survey, err := buildSurvey(cmd, nil)
	if err != nil {
		return nil, err
	}
	survey.IsActive = true
	if cmd.IsActive != nil {
		survey.IsActive = *cmd.IsActive
	}
	now := s.opts.now()
	survey.CreatedAt = now
	survey.UpdatedAt = now

	if err := s.surveys.Create(ctx, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *catalogService) Update(ctx context.Context, id string, cmd UpsertSurveyCommand) (*domain.Survey, error) {
	current, err := s.surveys.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	survey, err := buildSurvey(cmd, current)
	if err != nil {
		return nil, err
	}

	if survey.DaysAfterHiring != current.DaysAfterHiring || survey.SurveyDuration != current.SurveyDuration {
		answered, err := s.responses.CountBySurvey(ctx, id)
		if err != nil {
			return nil, err
		}
		if answered > 0 {
			return nil, apperror.New(
				apperror.KindValidation, apperror.CodeTimingLocked,
				"timing cannot change once responses exist",
			)
		}
	}

	survey.ID = current.ID
	survey.IsActive = current.IsActive
	if cmd.IsActive != nil {
		survey.IsActive = *cmd.IsActive
	}
	survey.CreatedAt = current.CreatedAt
	survey.UpdatedAt = s.opts.now()

	if err := s.surveys.Update(ctx, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *catalogService) SetActive(ctx context.Context, id string, active bool) (*domain.Survey, error) {
	survey, err := s.surveys.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey.IsActive == active {
		return survey, nil
	}
	survey.IsActive = active
	survey.UpdatedAt = s.opts.now()
	if err := s.surveys.Update(ctx, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

// Delete removes the survey, then every response recorded for it. Responses
// of a survey that no longer exists are never counted.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	if _, err := s.surveys.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.surveys.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.responses.DeleteBySurvey(ctx, id); err != nil {
		return fmt.Errorf("survey %s deleted, its responses were not: %w", id, err)
	}
	return nil
}

// buildSurvey validates cmd. Question ids found in current are kept, the
// rest get a fresh id.
func buildSurvey(cmd UpsertSurveyCommand, current *domain.Survey) (*domain.Survey, error) {
	title, err := domain.NewTitle(cmd.Title)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTiming(cmd.DaysAfterHiring, cmd.SurveyDuration); err != nil {
		return nil, err
	}

	known := map[string]struct{}{}
	if current != nil {
		for _, q := range current.Questions {
			known[q.ID] = struct{}{}
		}
	}

	questions := make([]domain.Question, 0, len(cmd.Questions))
	seen := map[string]struct{}{}
	for _, qc := range cmd.Questions {
		id := strings.TrimSpace(qc.ID)
		if _, ok := known[id]; !ok {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, apperror.Validation(apperror.CodeInvalidSurvey, "question id repeated: "+id)
		}
		seen[id] = struct{}{}
		questions = append(questions, domain.Question{
			ID:         id,
			Question:   qc.Question,
			Order:      qc.Order,
			IsRequired: qc.IsRequired,
		})
	}
	questions, err = domain.NewQuestionList(questions)
	if err != nil {
		return nil, err
	}

	return &domain.Survey{
		Title:           title,
		Description:     strings.TrimSpace(cmd.Description),
		DaysAfterHiring: cmd.DaysAfterHiring,
		SurveyDuration:  cmd.SurveyDuration,
		Questions:       questions,
	}, nil
}
