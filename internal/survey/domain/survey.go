package domain

import "time"

// Survey is a coordinator-managed feedback form that companies answer about
// the students they hired.
type Survey struct {
	ID              string
	Title           string
	Description     string
	IsActive        bool
	DaysAfterHiring int
	SurveyDuration  int
	Questions       []Question
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Question is owned by its Survey and deleted with it.
type Question struct {
	ID         string
	Question   string
	Order      int
	IsRequired bool
}

// QuestionByID returns the question with the given id.
func (s Survey) QuestionByID(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Response is a company's evaluation of one hired student for one survey.
// At most one exists per (SurveyID, CompanyID, StudentID).
type Response struct {
	ID          string
	SurveyID    string
	CompanyID   string
	StudentID   string
	IsCompleted bool
	Comments    string
	Answers     []Answer
	SubmittedBy string
	CreatedAt   time.Time
}

// Answer is one rating for one question of a Response.
type Answer struct {
	QuestionID string
	Rating     Rating
}

// ResponseKey identifies the uniqueness triple of a Response.
type ResponseKey struct {
	SurveyID  string
	CompanyID string
	StudentID string
}

func (r Response) Key() ResponseKey {
	return ResponseKey{SurveyID: r.SurveyID, CompanyID: r.CompanyID, StudentID: r.StudentID}
}

// Student is the minimal student view exposed to companies.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
