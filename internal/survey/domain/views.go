package domain

// PendingSurvey is one entry of the company notification badge.
type PendingSurvey struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PendingCount int    `json:"pendingCount"`
}

// PendingSummary is the notification aggregator result for one company.
type PendingSummary struct {
	TotalPendingSurveys int             `json:"totalPendingSurveys"`
	SurveysWithPending  []PendingSurvey `json:"surveysWithPending"`
}

// QuestionResult aggregates the ratings given to one question.
type QuestionResult struct {
	QuestionID   string   `json:"questionId"`
	Question     string   `json:"question"`
	Answered     int      `json:"answered"`
	Average      *float64 `json:"average,omitempty"`
	Distribution [6]int   `json:"distribution"`
}

// SurveyResults is the coordinator report for one survey.
type SurveyResults struct {
	SurveyID      string           `json:"surveyId"`
	Title         string           `json:"title"`
	ResponseCount int              `json:"responseCount"`
	CompanyCount  int              `json:"companyCount"`
	Questions     []QuestionResult `json:"questions"`
}
