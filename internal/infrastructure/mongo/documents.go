package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collections names every collection the API touches.
type Collections struct {
	Surveys      string
	Responses    string
	Applications string
	Vacantes     string
	Users        string
	Companies    string
}

// SurveyDocument is the stored survey with its questions embedded.
type SurveyDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description,omitempty"`
	IsActive        bool               `bson:"isActive"`
	DaysAfterHiring int                `bson:"daysAfterHiring"`
	SurveyDuration  int                `bson:"surveyDuration"`
	Questions       []QuestionDocument `bson:"questions"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

type QuestionDocument struct {
	ID         string `bson:"id"`
	Question   string `bson:"question"`
	Order      int    `bson:"order"`
	IsRequired bool   `bson:"isRequired"`
}

// ResponseDocument embeds its answers so a response and its answers are
// written by a single insert.
type ResponseDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	SurveyID    primitive.ObjectID `bson:"surveyId"`
	CompanyID   string             `bson:"companyId"`
	StudentID   string             `bson:"studentId"`
	IsCompleted bool               `bson:"isCompleted"`
	Comments    string             `bson:"comments,omitempty"`
	Answers     []AnswerDocument   `bson:"answers"`
	SubmittedBy string             `bson:"submittedBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

type AnswerDocument struct {
	QuestionID string `bson:"questionId"`
	Rating     int    `bson:"rating"`
}

// ApplicationDocument is a student's application to a vacante.
type ApplicationDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	VacanteID primitive.ObjectID `bson:"vacanteId"`
	Status    string             `bson:"status"`
	HiredAt   *time.Time         `bson:"hiredAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// ApplicationStatusHired marks applications that open eligibility windows.
const ApplicationStatusHired = "hired"

type VacanteDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	CompanyID primitive.ObjectID `bson:"companyId"`
	Title     string             `bson:"title"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// UserDocument covers students and coordinators.
type UserDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Role      string             `bson:"role"`
	CVURL     string             `bson:"cvUrl,omitempty"`
	Image     string             `bson:"image,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type CompanyDocument struct {
	ID                primitive.ObjectID `bson:"_id"`
	Name              string             `bson:"name"`
	Email             string             `bson:"email"`
	FiscalDocumentURL string             `bson:"fiscalDocumentUrl,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
}
