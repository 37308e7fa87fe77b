package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bolsatrabajo/api/internal/apperror"
	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
)

// ResultRepository aggregates completed responses into the coordinator report.
type ResultRepository struct {
	responses *mongo.Collection
}

func NewResultRepository(db *mongo.Database, collection string) *ResultRepository {
	return &ResultRepository{responses: db.Collection(collection)}
}

type ratingBucket struct {
	QuestionID string `bson:"questionId"`
	Rating     int    `bson:"rating"`
	Count      int    `bson:"count"`
}

// Summarize runs one $facet pipeline: totals per survey and counts per
// (question, rating).
func (r *ResultRepository) Summarize(ctx context.Context, survey surveydomain.Survey) (*surveydomain.SurveyResults, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(survey.ID))
	if err != nil {
		return nil, apperror.NotFound(apperror.CodeSurveyNotFound)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"surveyId": objectID, "isCompleted": true}}},
		{{Key: "$facet", Value: bson.M{
			"totals": bson.A{
				bson.M{"$group": bson.M{
					"_id":       nil,
					"responses": bson.M{"$sum": 1},
					"companies": bson.M{"$addToSet": "$companyId"},
				}},
				bson.M{"$project": bson.M{
					"_id":       0,
					"responses": 1,
					"companies": bson.M{"$size": "$companies"},
				}},
			},
			"ratings": bson.A{
				bson.M{"$unwind": "$answers"},
				bson.M{"$group": bson.M{
					"_id":   bson.M{"questionId": "$answers.questionId", "rating": "$answers.rating"},
					"count": bson.M{"$sum": 1},
				}},
				bson.M{"$project": bson.M{
					"_id":        0,
					"questionId": "$_id.questionId",
					"rating":     "$_id.rating",
					"count":      1,
				}},
			},
		}}},
	}

	cursor, err := r.responses.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facet struct {
		Totals []struct {
			Responses int `bson:"responses"`
			Companies int `bson:"companies"`
		} `bson:"totals"`
		Ratings []ratingBucket `bson:"ratings"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&facet); err != nil {
			return nil, err
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	results := buildResults(survey, facet.Ratings)
	if len(facet.Totals) > 0 {
		results.ResponseCount = facet.Totals[0].Responses
		results.CompanyCount = facet.Totals[0].Companies
	}
	return results, nil
}

// buildResults lays buckets out per question in survey order. Rating 0
// ("no aplica") is counted in the distribution but not in the average.
func buildResults(survey surveydomain.Survey, buckets []ratingBucket) *surveydomain.SurveyResults {
	byQuestion := make(map[string]*surveydomain.QuestionResult, len(survey.Questions))
	results := &surveydomain.SurveyResults{
		SurveyID:  survey.ID,
		Title:     survey.Title,
		Questions: make([]surveydomain.QuestionResult, len(survey.Questions)),
	}
	for i, q := range survey.Questions {
		results.Questions[i] = surveydomain.QuestionResult{QuestionID: q.ID, Question: q.Question}
		byQuestion[q.ID] = &results.Questions[i]
	}

	for _, b := range buckets {
		q, ok := byQuestion[b.QuestionID]
		if !ok || b.Rating < int(surveydomain.MinRating) || b.Rating > int(surveydomain.MaxRating) {
			continue
		}
		q.Distribution[b.Rating] += b.Count
		q.Answered += b.Count
	}

	for i := range results.Questions {
		q := &results.Questions[i]
		sum, rated := 0, 0
		for rating := 1; rating <= int(surveydomain.MaxRating); rating++ {
			sum += rating * q.Distribution[rating]
			rated += q.Distribution[rating]
		}
		if rated > 0 {
			avg := float64(sum) / float64(rated)
			q.Average = &avg
		}
	}
	return results
}
