package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bolsatrabajo/api/internal/apperror"
	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
)

// ResponseRepository stores survey responses, one document per
// (surveyId, companyId, studentId) with the answers embedded.
type ResponseRepository struct {
	responses *mongo.Collection
}

func NewResponseRepository(db *mongo.Database, collection string) *ResponseRepository {
	return &ResponseRepository{responses: db.Collection(collection)}
}

// Create inserts the response. The unique index on the triple turns a
// concurrent second insert into a DuplicateResponse error.
func (r *ResponseRepository) Create(ctx context.Context, response *surveydomain.Response) error {
	if response == nil {
		return errors.New("response payload is nil")
	}
	surveyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(response.SurveyID))
	if err != nil {
		return apperror.NotFound(apperror.CodeSurveyNotFound)
	}

	answers := make([]AnswerDocument, 0, len(response.Answers))
	for _, a := range response.Answers {
		answers = append(answers, AnswerDocument{QuestionID: a.QuestionID, Rating: a.Rating.Int()})
	}
	doc := ResponseDocument{
		ID:          primitive.NewObjectID(),
		SurveyID:    surveyID,
		CompanyID:   response.CompanyID,
		StudentID:   response.StudentID,
		IsCompleted: response.IsCompleted,
		Comments:    response.Comments,
		Answers:     answers,
		SubmittedBy: response.SubmittedBy,
		CreatedAt:   response.CreatedAt.UTC(),
	}

	if _, err := r.responses.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Duplicate(apperror.CodeDuplicateResponse, err)
		}
		return err
	}
	response.ID = doc.ID.Hex()
	return nil
}

func (r *ResponseRepository) Exists(ctx context.Context, key surveydomain.ResponseKey) (bool, error) {
	surveyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(key.SurveyID))
	if err != nil {
		return false, nil
	}
	count, err := r.responses.CountDocuments(ctx, bson.M{
		"surveyId":  surveyID,
		"companyId": key.CompanyID,
		"studentId": key.StudentID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CompletedStudents returns the ids of students with a completed response
// for the survey and company.
func (r *ResponseRepository) CompletedStudents(ctx context.Context, surveyID, companyID string) (map[string]struct{}, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(surveyID))
	if err != nil {
		return map[string]struct{}{}, nil
	}
	values, err := r.responses.Distinct(ctx, "studentId", bson.M{
		"surveyId":    objectID,
		"companyId":   companyID,
		"isCompleted": true,
	})
	if err != nil {
		return nil, err
	}
	result := make(map[string]struct{}, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			result[id] = struct{}{}
		}
	}
	return result, nil
}

func (r *ResponseRepository) CountBySurvey(ctx context.Context, surveyID string) (int, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(surveyID))
	if err != nil {
		return 0, nil
	}
	count, err := r.responses.CountDocuments(ctx, bson.M{"surveyId": objectID})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *ResponseRepository) DeleteBySurvey(ctx context.Context, surveyID string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(surveyID))
	if err != nil {
		return nil
	}
	_, err = r.responses.DeleteMany(ctx, bson.M{"surveyId": objectID})
	return err
}
