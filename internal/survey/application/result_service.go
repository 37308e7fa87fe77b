package application

import (
	"context"

	"github.com/bolsatrabajo/api/internal/survey/domain"
)

type resultService struct {
	surveys SurveyRepository
	results ResultRepository
}

func NewResultService(surveys SurveyRepository, results ResultRepository) ResultService {
	return &resultService{surveys: surveys, results: results}
}

func (s *resultService) Summarize(ctx context.Context, surveyID string) (*domain.SurveyResults, error) {
	survey, err := s.surveys.FindByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return s.results.Summarize(ctx, *survey)
}
