package application_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/survey/application"
	"github.com/bolsatrabajo/api/internal/survey/domain"
)

type fakeSurveys struct {
	mu        sync.Mutex
	byID      map[string]domain.Survey
	seq       int
	deleteErr error
}

func newFakeSurveys(surveys ...domain.Survey) *fakeSurveys {
	f := &fakeSurveys{byID: map[string]domain.Survey{}}
	for _, s := range surveys {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSurveys) Find(_ context.Context, filter application.SurveyFilter) ([]domain.Survey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Survey, 0, len(f.byID))
	for _, s := range f.byID {
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(s.Title, filter.Keyword) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (f *fakeSurveys) FindByID(_ context.Context, id string) (*domain.Survey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeSurveyNotFound)
	}
	return &s, nil
}

func (f *fakeSurveys) Create(_ context.Context, survey *domain.Survey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	survey.ID = fmt.Sprintf("survey-%d", f.seq)
	f.byID[survey.ID] = *survey
	return nil
}

func (f *fakeSurveys) Update(_ context.Context, survey *domain.Survey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[survey.ID]; !ok {
		return apperror.NotFound(apperror.CodeSurveyNotFound)
	}
	f.byID[survey.ID] = *survey
	return nil
}

func (f *fakeSurveys) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byID, id)
	return nil
}

// fakeResponses enforces the (survey, company, student) uniqueness under its
// mutex, like the unique index does in Mongo.
type fakeResponses struct {
	mu        sync.Mutex
	stored    map[domain.ResponseKey]domain.Response
	writes    int
	deleteErr error
	// beforeCreate runs outside the lock, to widen the check-then-insert gap.
	beforeCreate func()
}

func newFakeResponses(existing ...domain.Response) *fakeResponses {
	f := &fakeResponses{stored: map[domain.ResponseKey]domain.Response{}}
	for _, r := range existing {
		f.stored[r.Key()] = r
	}
	return f
}

func (f *fakeResponses) Create(_ context.Context, response *domain.Response) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if _, ok := f.stored[response.Key()]; ok {
		return apperror.Duplicate(apperror.CodeDuplicateResponse, nil)
	}
	response.ID = fmt.Sprintf("response-%d", len(f.stored)+1)
	f.stored[response.Key()] = *response
	return nil
}

func (f *fakeResponses) Exists(_ context.Context, key domain.ResponseKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.stored[key]
	return ok, nil
}

func (f *fakeResponses) CompletedStudents(_ context.Context, surveyID, companyID string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := map[string]struct{}{}
	for key, r := range f.stored {
		if key.SurveyID == surveyID && key.CompanyID == companyID && r.IsCompleted {
			result[key.StudentID] = struct{}{}
		}
	}
	return result, nil
}

func (f *fakeResponses) CountBySurvey(_ context.Context, surveyID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for key := range f.stored {
		if key.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

func (f *fakeResponses) DeleteBySurvey(_ context.Context, surveyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for key := range f.stored {
		if key.SurveyID == surveyID {
			delete(f.stored, key)
		}
	}
	return nil
}

func (f *fakeResponses) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

type fakeLedger map[string][]domain.HiringRecord

func (f fakeLedger) HiresByCompany(_ context.Context, companyID string) ([]domain.HiringRecord, error) {
	return f[companyID], nil
}

type fakeResults struct{}

func (fakeResults) Summarize(_ context.Context, survey domain.Survey) (*domain.SurveyResults, error) {
	return &domain.SurveyResults{SurveyID: survey.ID, Title: survey.Title}, nil
}
