package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResponseUniqueIndex is the name of the (surveyId, companyId, studentId)
// unique index.
const ResponseUniqueIndex = "uniq_survey_company_student"

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database, names Collections) error {
	specs := map[string][]mongo.IndexModel{
		names.Responses: {
			{
				Keys: bson.D{
					{Key: "surveyId", Value: 1},
					{Key: "companyId", Value: 1},
					{Key: "studentId", Value: 1},
				},
				Options: options.Index().SetName(ResponseUniqueIndex).SetUnique(true),
			},
		},
		names.Surveys: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		names.Vacantes: {
			{Keys: bson.D{{Key: "companyId", Value: 1}}},
		},
		names.Applications: {
			{Keys: bson.D{{Key: "vacanteId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "vacanteId", Value: 1}}},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
