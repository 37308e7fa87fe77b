package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodoc "github.com/bolsatrabajo/api/internal/infrastructure/mongo"
	uploaddomain "github.com/bolsatrabajo/api/internal/upload/domain"
)

type seedOptions struct {
	envName         string
	companyCount    int
	studentCount    int
	dropCollections bool
	randomSeed      int64
}

var (
	firstNames   = []string{"Ana", "Luis", "María", "Jorge", "Fernanda", "Carlos", "Sofía", "Diego", "Valeria", "Andrés", "Camila", "Ricardo"}
	lastNames    = []string{"García", "Hernández", "López", "Martínez", "Pérez", "Sánchez", "Ramírez", "Torres", "Flores", "Rivera"}
	companyNames = []string{"Acme Software", "Grupo Industrial Norte", "Logística del Bajío", "Consultores Aztlán", "Red Salud", "Fintech Maya", "Agroalimentos del Valle", "Energía Solar MX"}
	vacanteTitle = []string{"Desarrollador backend", "Analista de datos", "Soporte técnico", "Ingeniero de calidad", "Auxiliar contable", "Diseñador UX"}
)

func main() {
	opts := parseFlags()

	if err := loadEnvFiles(opts.envName); err != nil {
		log.Fatalf("load env files: %v", err)
	}

	names := mongodoc.Collections{
		Surveys:      envOrDefault("SURVEY_COLLECTION", "surveys"),
		Responses:    envOrDefault("RESPONSE_COLLECTION", "survey_responses"),
		Applications: envOrDefault("APPLICATION_COLLECTION", "applications"),
		Vacantes:     envOrDefault("VACANTE_COLLECTION", "vacantes"),
		Users:        envOrDefault("USER_COLLECTION", "users"),
		Companies:    envOrDefault("COMPANY_COLLECTION", "companies"),
	}
	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "bolsatrabajo")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("mongo connect failed: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		dropCollections(ctx, db, names)
		log.Printf("existing collections dropped")
	}
	if err := mongodoc.EnsureIndexes(ctx, db, names); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	now := time.Now().UTC()

	companies := generateCompanies(rng, opts.companyCount, now)
	students, coordinators := generateUsers(rng, opts.studentCount, now)
	vacantes := generateVacantes(rng, companies, now)
	applications := generateApplications(rng, students, vacantes, now)
	surveys := generateSurveys(now)

	for _, batch := range []struct {
		collection string
		docs       []interface{}
	}{
		{names.Companies, toAnySlice(companies)},
		{names.Users, append(toAnySlice(students), toAnySlice(coordinators)...)},
		{names.Vacantes, toAnySlice(vacantes)},
		{names.Applications, toAnySlice(applications)},
		{names.Surveys, toAnySlice(surveys)},
	} {
		if err := insertMany(ctx, db.Collection(batch.collection), batch.docs); err != nil {
			log.Fatalf("insert into %s: %v", batch.collection, err)
		}
	}

	hired := 0
	for _, app := range applications {
		if app.Status == mongodoc.ApplicationStatusHired {
			hired++
		}
	}
	log.Printf("seed done: companies=%d students=%d coordinators=%d vacantes=%d applications=%d hired=%d surveys=%d",
		len(companies), len(students), len(coordinators), len(vacantes), len(applications), hired, len(surveys))
	log.Printf("mongo: %s / %s (env=%s, seed=%d)", mongoURI, dbName, opts.envName, opts.randomSeed)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "env file name under ../env (e.g. local, staging)")
	flag.IntVar(&opts.companyCount, "companies", 4, "number of companies")
	flag.IntVar(&opts.studentCount, "students", 30, "number of students")
	flag.BoolVar(&opts.dropCollections, "drop", true, "drop existing collections before inserting")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed, for reproducible data")
	flag.Parse()

	if opts.companyCount <= 0 {
		log.Fatal("companies must be at least 1")
	}
	if opts.studentCount < opts.companyCount {
		opts.studentCount = opts.companyCount
	}
	return opts
}

// loadEnvFiles loads shared.env and <env>.env when they exist. Values already
// in the environment win.
func loadEnvFiles(envName string) error {
	base := filepath.Clean(filepath.Join("..", "env"))
	for _, file := range []string{
		filepath.Join(base, "shared.env"),
		filepath.Join(base, fmt.Sprintf("%s.env", envName)),
	} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dropCollections(ctx context.Context, db *mongo.Database, names mongodoc.Collections) {
	for _, name := range []string{
		names.Surveys, names.Responses, names.Applications, names.Vacantes, names.Users, names.Companies,
	} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			log.Printf("WARN: drop %s failed: %v", name, err)
		}
	}
}

func generateCompanies(rng *rand.Rand, count int, now time.Time) []mongodoc.CompanyDocument {
	docs := make([]mongodoc.CompanyDocument, 0, count)
	for i := 0; i < count; i++ {
		id := primitive.NewObjectID()
		name := companyNames[i%len(companyNames)]
		if i >= len(companyNames) {
			name = fmt.Sprintf("%s %d", name, i/len(companyNames)+1)
		}
		doc := mongodoc.CompanyDocument{
			ID:        id,
			Name:      name,
			Email:     fmt.Sprintf("rh@%s.example.com", slugify(name)),
			CreatedAt: now.AddDate(0, 0, -rng.Intn(365)-30),
		}
		if rng.Intn(3) > 0 {
			doc.FiscalDocumentURL = storedPath(uploaddomain.KindFiscal, id.Hex(), doc.CreatedAt)
		}
		docs = append(docs, doc)
	}
	return docs
}

func generateUsers(rng *rand.Rand, count int, now time.Time) (students, coordinators []mongodoc.UserDocument) {
	students = make([]mongodoc.UserDocument, 0, count)
	for i := 0; i < count; i++ {
		id := primitive.NewObjectID()
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		created := now.AddDate(0, 0, -rng.Intn(200)-10)
		doc := mongodoc.UserDocument{
			ID:        id,
			Name:      first + " " + last,
			Email:     fmt.Sprintf("%s.%s.%d@alumnos.example.edu", slugify(first), slugify(last), i+1),
			Role:      string(uploaddomain.RoleStudent),
			CreatedAt: created,
		}
		if rng.Intn(4) > 0 {
			doc.CVURL = storedPath(uploaddomain.KindCV, id.Hex(), created)
		}
		if rng.Intn(2) == 0 {
			doc.Image = storedPath(uploaddomain.KindPhoto, id.Hex(), created)
		}
		students = append(students, doc)
	}

	coordinators = []mongodoc.UserDocument{{
		ID:        primitive.NewObjectID(),
		Name:      "Coordinación de Vinculación",
		Email:     "vinculacion@example.edu",
		Role:      string(uploaddomain.RoleCoordinator),
		CreatedAt: now.AddDate(-1, 0, 0),
	}}
	return students, coordinators
}

func generateVacantes(rng *rand.Rand, companies []mongodoc.CompanyDocument, now time.Time) []mongodoc.VacanteDocument {
	docs := make([]mongodoc.VacanteDocument, 0, len(companies)*2)
	for _, company := range companies {
		for n := 1 + rng.Intn(3); n > 0; n-- {
			docs = append(docs, mongodoc.VacanteDocument{
				ID:        primitive.NewObjectID(),
				CompanyID: company.ID,
				Title:     vacanteTitle[rng.Intn(len(vacanteTitle))],
				CreatedAt: now.AddDate(0, 0, -rng.Intn(120)-20),
			})
		}
	}
	return docs
}

// generateApplications gives each student one or two applications. Roughly
// half of the students end up hired, with hiredAt spread over the last 90
// days so that both surveys have students inside and outside their window.
func generateApplications(rng *rand.Rand, students []mongodoc.UserDocument, vacantes []mongodoc.VacanteDocument, now time.Time) []mongodoc.ApplicationDocument {
	docs := make([]mongodoc.ApplicationDocument, 0, len(students)*2)
	statuses := []string{"pending", "reviewing", "rejected"}
	for _, student := range students {
		picked := map[primitive.ObjectID]struct{}{}
		for n := 1 + rng.Intn(2); n > 0; n-- {
			vacante := vacantes[rng.Intn(len(vacantes))]
			if _, dup := picked[vacante.ID]; dup {
				continue
			}
			picked[vacante.ID] = struct{}{}

			doc := mongodoc.ApplicationDocument{
				ID:        primitive.NewObjectID(),
				UserID:    student.ID,
				VacanteID: vacante.ID,
				Status:    statuses[rng.Intn(len(statuses))],
				CreatedAt: now.AddDate(0, 0, -rng.Intn(100)-5),
			}
			if rng.Intn(2) == 0 {
				hiredAt := now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour)
				doc.Status = mongodoc.ApplicationStatusHired
				doc.HiredAt = &hiredAt
			}
			docs = append(docs, doc)
		}
	}
	return docs
}

func generateSurveys(now time.Time) []mongodoc.SurveyDocument {
	question := func(order int, text string, required bool) mongodoc.QuestionDocument {
		return mongodoc.QuestionDocument{ID: uuid.NewString(), Question: text, Order: order, IsRequired: required}
	}
	return []mongodoc.SurveyDocument{
		{
			ID:              primitive.NewObjectID(),
			Title:           "Evaluación de desempeño inicial",
			Description:     "Primeras semanas del estudiante en la empresa.",
			IsActive:        true,
			DaysAfterHiring: 7,
			SurveyDuration:  30,
			Questions: []mongodoc.QuestionDocument{
				question(1, "Puntualidad y asistencia", true),
				question(2, "Calidad del trabajo entregado", true),
				question(3, "Trabajo en equipo", false),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:              primitive.NewObjectID(),
			Title:           "Seguimiento a tres meses",
			Description:     "Valoración de la formación académica del egresado.",
			IsActive:        true,
			DaysAfterHiring: 60,
			SurveyDuration:  45,
			Questions: []mongodoc.QuestionDocument{
				question(1, "Conocimientos técnicos", true),
				question(2, "Comunicación", true),
				question(3, "Disposición para aprender", false),
				question(4, "¿Volvería a contratar egresados?", false),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func storedPath(kind uploaddomain.Kind, ownerID string, at time.Time) string {
	ext := "pdf"
	if kind == uploaddomain.KindPhoto {
		ext = "jpg"
	}
	return uploaddomain.StoredPath(kind, uploaddomain.NewFilename(kind, ownerID, at, ext))
}

func insertMany(ctx context.Context, col *mongo.Collection, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := col.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func slugify(value string) string {
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u")
	value = strings.ToLower(replacer.Replace(value))
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
