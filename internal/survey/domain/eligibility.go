package domain

import "time"

const day = 24 * time.Hour

// Window is the closed interval during which a hired student may be surveyed.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor computes [hiredAt+daysAfterHiring, start+surveyDuration]. Days are
// fixed 24h spans so the result does not depend on the server time zone.
func WindowFor(hiredAt time.Time, survey Survey) Window {
	start := hiredAt.Add(time.Duration(survey.DaysAfterHiring) * day)
	return Window{
		Start: start,
		End:   start.Add(time.Duration(survey.SurveyDuration) * day),
	}
}

// Contains is inclusive on both ends.
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start) && !now.After(w.End)
}

// Evaluation is the result of running the eligibility engine for one survey
// and one company at one instant.
type Evaluation struct {
	SurveyID  string
	CompanyID string

	// Available holds hires whose window contains now, completed or not.
	Available []HiringRecord
	// Pending holds available hires with no completed response.
	Pending []HiringRecord

	TotalStudents          int
	PendingCount           int
	CompletedCount         int
	CompletedEligibleCount int
}

func (e Evaluation) PendingStudents() []Student {
	result := make([]Student, 0, len(e.Pending))
	for _, h := range e.Pending {
		result = append(result, h.Student())
	}
	return result
}

// Evaluate runs the eligibility engine. hires must already belong to
// companyID and be collapsed by the caller's hiring policy; completed holds
// the student ids with a completed response for (survey, company).
//
// CompletedCount is the number of completed responses regardless of window;
// CompletedEligibleCount only counts those inside the available set, so
// PendingCount + CompletedEligibleCount == TotalStudents.
func Evaluate(survey Survey, companyID string, hires []HiringRecord, completed map[string]struct{}, now time.Time) Evaluation {
	eval := Evaluation{
		SurveyID:       survey.ID,
		CompanyID:      companyID,
		Available:      make([]HiringRecord, 0),
		Pending:        make([]HiringRecord, 0),
		CompletedCount: len(completed),
	}

	for _, hire := range hires {
		if hire.HiredAt == nil {
			continue
		}
		if !WindowFor(*hire.HiredAt, survey).Contains(now) {
			continue
		}
		eval.Available = append(eval.Available, hire)
		if _, done := completed[hire.StudentID]; done {
			eval.CompletedEligibleCount++
			continue
		}
		eval.Pending = append(eval.Pending, hire)
	}

	eval.TotalStudents = len(eval.Available)
	eval.PendingCount = len(eval.Pending)
	return eval
}

// IsEligible reports whether studentID has at least one hire whose window
// contains now.
func IsEligible(survey Survey, studentID string, hires []HiringRecord, now time.Time) bool {
	for _, hire := range hires {
		if hire.StudentID != studentID || hire.HiredAt == nil {
			continue
		}
		if WindowFor(*hire.HiredAt, survey).Contains(now) {
			return true
		}
	}
	return false
}
