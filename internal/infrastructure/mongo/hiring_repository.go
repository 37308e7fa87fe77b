package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	surveydomain "github.com/bolsatrabajo/api/internal/survey/domain"
)

// HiringRepository derives hiring records from hired applications to a
// company's vacantes.
type HiringRepository struct {
	vacantes     *mongo.Collection
	applications string
	users        string
}

func NewHiringRepository(db *mongo.Database, names Collections) *HiringRepository {
	return &HiringRepository{
		vacantes:     db.Collection(names.Vacantes),
		applications: names.Applications,
		users:        names.Users,
	}
}

// HiresByCompany returns every hired application with a hire date, one
// record per application. Collapsing repeated hires is left to the caller.
func (r *HiringRepository) HiresByCompany(ctx context.Context, companyID string) ([]surveydomain.HiringRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(companyID))
	if err != nil {
		return []surveydomain.HiringRecord{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"companyId": objectID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         r.applications,
			"localField":   "_id",
			"foreignField": "vacanteId",
			"as":           "application",
		}}},
		{{Key: "$unwind", Value: "$application"}},
		{{Key: "$match", Value: bson.M{
			"application.status":  ApplicationStatusHired,
			"application.hiredAt": bson.M{"$ne": nil},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         r.users,
			"localField":   "application.userId",
			"foreignField": "_id",
			"as":           "student",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$student", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":           0,
			"applicationId": "$application._id",
			"vacanteId":     "$_id",
			"studentId":     "$application.userId",
			"hiredAt":       "$application.hiredAt",
			"studentName":   "$student.name",
			"studentEmail":  "$student.email",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "hiredAt", Value: 1}, {Key: "studentId", Value: 1}}}},
	}

	cursor, err := r.vacantes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]surveydomain.HiringRecord, 0)
	for cursor.Next(ctx) {
		var row struct {
			ApplicationID primitive.ObjectID `bson:"applicationId"`
			VacanteID     primitive.ObjectID `bson:"vacanteId"`
			StudentID     primitive.ObjectID `bson:"studentId"`
			HiredAt       *time.Time         `bson:"hiredAt"`
			StudentName   string             `bson:"studentName"`
			StudentEmail  string             `bson:"studentEmail"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		records = append(records, surveydomain.HiringRecord{
			ApplicationID: row.ApplicationID.Hex(),
			StudentID:     row.StudentID.Hex(),
			StudentName:   row.StudentName,
			StudentEmail:  row.StudentEmail,
			CompanyID:     objectID.Hex(),
			VacanteID:     row.VacanteID.Hex(),
			HiredAt:       row.HiredAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
