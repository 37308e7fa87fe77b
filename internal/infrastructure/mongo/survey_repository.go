package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bolsatrabajo/api/internal/apperror"
	surveyapp "github.com/bolsatrabajo/api/internal/survey/application"
	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
)

// SurveyRepository stores survey definitions.
type SurveyRepository struct {
	surveys *mongo.Collection
}

func NewSurveyRepository(db *mongo.Database, collection string) *SurveyRepository {
	return &SurveyRepository{surveys: db.Collection(collection)}
}

// Find converts the filter into a Mongo query, newest first.
func (r *SurveyRepository) Find(ctx context.Context, filter surveyapp.SurveyFilter) ([]surveydomain.Survey, error) {
	mongoFilter := bson.M{}
	if filter.ActiveOnly {
		mongoFilter["isActive"] = true
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
		mongoFilter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	cursor, err := r.surveys.Find(ctx, mongoFilter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := make([]surveydomain.Survey, 0)
	for cursor.Next(ctx) {
		var doc SurveyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		surveys = append(surveys, mapSurveyDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return surveys, nil
}

func (r *SurveyRepository) FindByID(ctx context.Context, id string) (*surveydomain.Survey, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, apperror.NotFound(apperror.CodeSurveyNotFound)
	}
	var doc SurveyDocument
	if err := r.surveys.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound(apperror.CodeSurveyNotFound)
		}
		return nil, err
	}
	survey := mapSurveyDocument(doc)
	return &survey, nil
}

func (r *SurveyRepository) Create(ctx context.Context, survey *surveydomain.Survey) error {
	if survey == nil {
		return errors.New("survey payload is nil")
	}
	doc := mapDomainSurvey(survey)
	doc.ID = primitive.NewObjectID()
	if _, err := r.surveys.InsertOne(ctx, doc); err != nil {
		return err
	}
	survey.ID = doc.ID.Hex()
	return nil
}

func (r *SurveyRepository) Update(ctx context.Context, survey *surveydomain.Survey) error {
	if survey == nil {
		return errors.New("survey payload is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(survey.ID))
	if err != nil {
		return apperror.NotFound(apperror.CodeSurveyNotFound)
	}
	doc := mapDomainSurvey(survey)
	result, err := r.surveys.UpdateByID(ctx, objectID, bson.M{"$set": bson.M{
		"title":           doc.Title,
		"description":     doc.Description,
		"isActive":        doc.IsActive,
		"daysAfterHiring": doc.DaysAfterHiring,
		"surveyDuration":  doc.SurveyDuration,
		"questions":       doc.Questions,
		"updatedAt":       doc.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound(apperror.CodeSurveyNotFound)
	}
	return nil
}

func (r *SurveyRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return apperror.NotFound(apperror.CodeSurveyNotFound)
	}
	result, err := r.surveys.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound(apperror.CodeSurveyNotFound)
	}
	return nil
}

func mapSurveyDocument(doc SurveyDocument) surveydomain.Survey {
	questions := make([]surveydomain.Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		questions = append(questions, surveydomain.Question{
			ID:         q.ID,
			Question:   q.Question,
			Order:      q.Order,
			IsRequired: q.IsRequired,
		})
	}
	return surveydomain.Survey{
		ID:              doc.ID.Hex(),
		Title:           doc.Title,
		Description:     doc.Description,
		IsActive:        doc.IsActive,
		DaysAfterHiring: doc.DaysAfterHiring,
		SurveyDuration:  doc.SurveyDuration,
		Questions:       questions,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func mapDomainSurvey(survey *surveydomain.Survey) SurveyDocument {
	questions := make([]QuestionDocument, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		questions = append(questions, QuestionDocument{
			ID:         q.ID,
			Question:   q.Question,
			Order:      q.Order,
			IsRequired: q.IsRequired,
		})
	}
	return SurveyDocument{
		Title:           survey.Title,
		Description:     survey.Description,
		IsActive:        survey.IsActive,
		DaysAfterHiring: survey.DaysAfterHiring,
		SurveyDuration:  survey.SurveyDuration,
		Questions:       questions,
		CreatedAt:       survey.CreatedAt.UTC(),
		UpdatedAt:       survey.UpdatedAt.UTC(),
	}
}
