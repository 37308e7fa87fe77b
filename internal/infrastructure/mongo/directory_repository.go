package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bolsatrabajo/api/internal/apperror"
	uploaddomain "github.com/bolsatrabajo/api/internal/upload/domain"
)

// DirectoryRepository resolves the users and companies that own uploaded
// files, and the application links between them.
type DirectoryRepository struct {
	users        *mongo.Collection
	companies    *mongo.Collection
	vacantes     *mongo.Collection
	applications *mongo.Collection
}

func NewDirectoryRepository(db *mongo.Database, names Collections) *DirectoryRepository {
	return &DirectoryRepository{
		users:        db.Collection(names.Users),
		companies:    db.Collection(names.Companies),
		vacantes:     db.Collection(names.Vacantes),
		applications: db.Collection(names.Applications),
	}
}

// referenceField maps a kind to the collection and field holding its path.
func (r *DirectoryRepository) referenceField(kind uploaddomain.Kind) (*mongo.Collection, string, error) {
	switch kind {
	case uploaddomain.KindCV:
		return r.users, "cvUrl", nil
	case uploaddomain.KindPhoto:
		return r.users, "image", nil
	case uploaddomain.KindFiscal:
		return r.companies, "fiscalDocumentUrl", nil
	}
	return nil, "", fmt.Errorf("unknown upload kind %q", kind)
}

// StoredReference returns the path stored on the owning record, empty when
// the owner exists without a file.
func (r *DirectoryRepository) StoredReference(ctx context.Context, kind uploaddomain.Kind, ownerID string) (string, error) {
	coll, field, err := r.referenceField(kind)
	if err != nil {
		return "", err
	}
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(ownerID))
	if err != nil {
		return "", apperror.NotFound(apperror.CodeNotFound)
	}

	var doc bson.M
	opts := options.FindOne().SetProjection(bson.M{field: 1})
	if err := coll.FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", apperror.NotFound(apperror.CodeNotFound)
		}
		return "", err
	}
	reference, _ := doc[field].(string)
	return reference, nil
}

// SetReference points the owning record at reference and returns the
// previous value.
func (r *DirectoryRepository) SetReference(ctx context.Context, kind uploaddomain.Kind, ownerID, reference string) (string, error) {
	coll, field, err := r.referenceField(kind)
	if err != nil {
		return "", err
	}
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(ownerID))
	if err != nil {
		return "", apperror.NotFound(apperror.CodeNotFound)
	}

	var before bson.M
	opts := options.FindOneAndUpdate().
		SetProjection(bson.M{field: 1}).
		SetReturnDocument(options.Before)
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{field: reference}}, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", apperror.NotFound(apperror.CodeNotFound)
		}
		return "", err
	}
	previous, _ := before[field].(string)
	return previous, nil
}

// HasApplication reports whether studentID applied to any vacante of
// companyID, whatever the application status.
func (r *DirectoryRepository) HasApplication(ctx context.Context, companyID, studentID string) (bool, error) {
	company, err := primitive.ObjectIDFromHex(strings.TrimSpace(companyID))
	if err != nil {
		return false, nil
	}
	student, err := primitive.ObjectIDFromHex(strings.TrimSpace(studentID))
	if err != nil {
		return false, nil
	}

	values, err := r.vacantes.Distinct(ctx, "_id", bson.M{"companyId": company})
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}

	count, err := r.applications.CountDocuments(ctx, bson.M{
		"userId":    student,
		"vacanteId": bson.M{"$in": values},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
