package mongo

import (
	"testing"

	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
)

func TestBuildResults(t *testing.T) {
	survey := surveydomain.Survey{
		ID:    "s1",
		Title: "Desempeño",
		Questions: []surveydomain.Question{
			{ID: "q1", Question: "Puntualidad", Order: 1},
			{ID: "q2", Question: "Actitud", Order: 2},
			{ID: "q3", Question: "Liderazgo", Order: 3},
		},
	}

	got := buildResults(survey, []ratingBucket{
		{QuestionID: "q1", Rating: 5, Count: 2},
		{QuestionID: "q1", Rating: 2, Count: 1},
		{QuestionID: "q1", Rating: 0, Count: 3},
		{QuestionID: "q2", Rating: 0, Count: 1},
		{QuestionID: "removed", Rating: 4, Count: 9},
		{QuestionID: "q3", Rating: 7, Count: 1},
	})

	if len(got.Questions) != 3 || got.Questions[0].QuestionID != "q1" {
		t.Fatalf("questions = %+v", got.Questions)
	}

	q1 := got.Questions[0]
	if q1.Answered != 6 || q1.Distribution != [6]int{3, 0, 1, 0, 0, 2} {
		t.Errorf("q1 = %+v", q1)
	}
	if q1.Average == nil || *q1.Average != 4 {
		t.Errorf("q1 average = %v, want 4", q1.Average)
	}

	if q2 := got.Questions[1]; q2.Answered != 1 || q2.Average != nil {
		t.Errorf("q2 = %+v, want one answer and no average", q2)
	}
	if q3 := got.Questions[2]; q3.Answered != 0 {
		t.Errorf("q3 = %+v, out of range ratings must be ignored", q3)
	}
}
