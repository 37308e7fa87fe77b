package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bolsatrabajo/api/internal/apperror"
)

// Survey limits. These are fixed for compatibility with existing clients and
// are not read from the environment.
const (
	MinDaysAfterHiring = 0
	MaxDaysAfterHiring = 365
	MinSurveyDuration  = 1
	MaxSurveyDuration  = 180
	MinQuestions       = 1
	MaxQuestions       = 50

	MaxTitleRunes    = 200
	MaxQuestionRunes = 500
	MaxCommentRunes  = 2000
)

// Rating is an answer value from 0 ("no aplica") to 5 ("muy bien").
type Rating int

const (
	MinRating Rating = 0
	MaxRating Rating = 5
)

var ratingLabels = map[Rating]string{
	0: "no aplica",
	1: "muy mal",
	2: "mal",
	3: "regular",
	4: "bien",
	5: "muy bien",
}

func NewRating(value int) (Rating, error) {
	if value < int(MinRating) || value > int(MaxRating) {
		return 0, apperror.Validation(apperror.CodeInvalidRating, fmt.Sprintf("rating must be between %d and %d, got %d", MinRating, MaxRating, value))
	}
	return Rating(value), nil
}

func (r Rating) Int() int {
	return int(r)
}

func (r Rating) Label() string {
	return ratingLabels[r]
}

// ValidateTiming checks daysAfterHiring and surveyDuration against the limits.
func ValidateTiming(daysAfterHiring, surveyDuration int) error {
	if daysAfterHiring < MinDaysAfterHiring || daysAfterHiring > MaxDaysAfterHiring {
		return apperror.Validation(apperror.CodeInvalidSurvey, fmt.Sprintf("daysAfterHiring must be between %d and %d", MinDaysAfterHiring, MaxDaysAfterHiring))
	}
	if surveyDuration < MinSurveyDuration || surveyDuration > MaxSurveyDuration {
		return apperror.Validation(apperror.CodeInvalidSurvey, fmt.Sprintf("surveyDuration must be between %d and %d", MinSurveyDuration, MaxSurveyDuration))
	}
	return nil
}

// NewTitle trims and bounds a survey title.
func NewTitle(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperror.Validation(apperror.CodeInvalidSurvey, "title is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleRunes {
		return "", apperror.Validation(apperror.CodeInvalidSurvey, fmt.Sprintf("title must be at most %d characters", MaxTitleRunes))
	}
	return trimmed, nil
}

// NewQuestionList validates question text and count and returns the list
// sorted by Order. Orders are renumbered from 1 so gaps and ties from the
// client do not leak into storage.
func NewQuestionList(questions []Question) ([]Question, error) {
	if len(questions) < MinQuestions || len(questions) > MaxQuestions {
		return nil, apperror.Validation(apperror.CodeInvalidSurvey, fmt.Sprintf("a survey needs between %d and %d questions", MinQuestions, MaxQuestions))
	}
	result := make([]Question, 0, len(questions))
	for _, q := range questions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			return nil, apperror.Validation(apperror.CodeInvalidSurvey, "question text is required")
		}
		if utf8.RuneCountInString(text) > MaxQuestionRunes {
			return nil, apperror.Validation(apperror.CodeInvalidSurvey, fmt.Sprintf("question text must be at most %d characters", MaxQuestionRunes))
		}
		q.Question = text
		result = append(result, q)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	for i := range result {
		result[i].Order = i + 1
	}
	return result, nil
}

// NewComments trims and bounds free-text response comments.
func NewComments(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if utf8.RuneCountInString(trimmed) > MaxCommentRunes {
		return "", apperror.Validation(apperror.CodeInvalidAnswers, fmt.Sprintf("comments must be at most %d characters", MaxCommentRunes))
	}
	return trimmed, nil
}
