package upload_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/infrastructure/storage"
	"github.com/bolsatrabajo/api/internal/interfaces/http/common"
	"github.com/bolsatrabajo/api/internal/interfaces/http/upload"
	uploadapp "github.com/bolsatrabajo/api/internal/upload/application"
	uploaddomain "github.com/bolsatrabajo/api/internal/upload/domain"
)

const (
	cvName     = "cv_U123_1781524800123.pdf"
	photoName  = "photo_U123_1781524800123.png"
	fiscalName = "fiscal_C9_1781524800123.pdf"
	pdfBody    = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"
)

type stubDirectory struct {
	mu         sync.Mutex
	references map[string]string
}

func key(kind uploaddomain.Kind, owner string) string { return string(kind) + "/" + owner }

func (d *stubDirectory) StoredReference(_ context.Context, kind uploaddomain.Kind, ownerID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ref, ok := d.references[key(kind, ownerID)]
	if !ok {
		return "", apperror.NotFound(apperror.CodeNotFound)
	}
	return ref, nil
}

func (d *stubDirectory) SetReference(_ context.Context, kind uploaddomain.Kind, ownerID, reference string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	previous := d.references[key(kind, ownerID)]
	d.references[key(kind, ownerID)] = reference
	return previous, nil
}

func (d *stubDirectory) HasApplication(_ context.Context, companyID, studentID string) (bool, error) {
	return companyID == "C9" && studentID == "U123", nil
}

type fixture struct {
	router    http.Handler
	files     *storage.Local
	directory *stubDirectory
}

func newFixture(t *testing.T, identity *common.Identity) fixture {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	directory := &stubDirectory{references: map[string]string{
		key(uploaddomain.KindCV, "U123"):    uploaddomain.StoredPath(uploaddomain.KindCV, cvName),
		key(uploaddomain.KindPhoto, "U123"): uploaddomain.StoredPath(uploaddomain.KindPhoto, photoName),
		key(uploaddomain.KindFiscal, "C9"):  uploaddomain.StoredPath(uploaddomain.KindFiscal, fiscalName),
	}}
	for dir, name := range map[string]string{"cv": cvName, "photo": photoName, "fiscal-document": fiscalName} {
		if err := files.Write(context.Background(), dir, name, strings.NewReader(pdfBody)); err != nil {
			t.Fatal(err)
		}
	}

	logger := log.New(io.Discard, "", 0)
	router := chi.NewRouter()
	upload.NewHandler(upload.Config{
		Logger:     logger,
		Authorizer: uploadapp.NewAuthorizer(directory),
		Uploads: uploadapp.NewUploadService(uploadapp.UploadConfig{
			Directory: directory,
			Files:     files,
			MaxBytes:  1 << 20,
			Logger:    logger,
			Now:       func() time.Time { return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC) },
		}),
		Files:    files,
		MaxBytes: 1 << 20,
	}).Register(router, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity == nil {
				common.WriteError(logger, w, r, apperror.Unauthenticated(""))
				return
			}
			next.ServeHTTP(w, r.WithContext(common.ContextWithIdentity(r.Context(), *identity)))
		})
	})
	return fixture{router: router, files: files, directory: directory}
}

func TestServe(t *testing.T) {
	owner := &common.Identity{ID: "U123", Role: common.RoleStudent}
	company := &common.Identity{ID: "C9", Role: common.RoleCompany}
	otherCompany := &common.Identity{ID: "C8", Role: common.RoleCompany}
	coordinator := &common.Identity{ID: "K1", Role: common.RoleCoordinator}
	stranger := &common.Identity{ID: "U456", Role: common.RoleStudent}

	type then struct {
		status       int
		code         string
		contentType  string
		cacheControl string
	}
	for name, testcase := range map[string]struct {
		caller *common.Identity
		target string
		then   then
	}{
		"owner reads cv": {
			caller: owner, target: "/uploads/cv/" + cvName,
			then: then{status: http.StatusOK, contentType: "application/pdf", cacheControl: "private, no-store"},
		},
		"applied company reads cv": {
			caller: company, target: "/uploads/cv/" + cvName,
			then: then{status: http.StatusOK, contentType: "application/pdf", cacheControl: "private, no-store"},
		},
		"coordinator reads photo": {
			caller: coordinator, target: "/uploads/photo/" + photoName,
			then: then{status: http.StatusOK, contentType: "image/png", cacheControl: "private, max-age=3600"},
		},
		"company reads its fiscal document": {
			caller: company, target: "/uploads/fiscal-document/" + fiscalName,
			then: then{status: http.StatusOK, contentType: "application/pdf", cacheControl: "private, no-store"},
		},
		"other company denied cv": {
			caller: otherCompany, target: "/uploads/cv/" + cvName,
			then: then{status: http.StatusForbidden, code: "NotAuthorized"},
		},
		"other student denied cv": {
			caller: stranger, target: "/uploads/cv/" + cvName,
			then: then{status: http.StatusForbidden, code: "NotAuthorized"},
		},
		"other student guessing a cv name": {
			caller: stranger, target: "/uploads/cv/cv_U123_1781524800124.pdf",
			then: then{status: http.StatusForbidden, code: "NotAuthorized"},
		},
		"company denied photo": {
			caller: company, target: "/uploads/photo/" + photoName,
			then: then{status: http.StatusForbidden, code: "NotAuthorized"},
		},
		"stale filename": {
			caller: owner, target: "/uploads/cv/cv_U123_1.pdf",
			then: then{status: http.StatusNotFound, code: "NotFound"},
		},
		"kind mismatch": {
			caller: owner, target: "/uploads/cv/" + photoName,
			then: then{status: http.StatusBadRequest, code: "MalformedFilename"},
		},
		"traversal": {
			caller: owner, target: "/uploads/cv/..%5Csecret",
			then: then{status: http.StatusBadRequest, code: "InvalidFilename"},
		},
		"unknown segment": {
			caller: owner, target: "/uploads/avatars/" + photoName,
			then: then{status: http.StatusNotFound, code: "NotFound"},
		},
		"anonymous": {
			target: "/uploads/cv/" + cvName,
			then:   then{status: http.StatusUnauthorized, code: "Unauthenticated"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, testcase.caller)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testcase.target, nil))

			if rec.Code != testcase.then.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, testcase.then.status, rec.Body)
			}
			if testcase.then.code != "" {
				var body common.ErrorBody
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatal(err)
				}
				if body != (common.ErrorBody{Error: testcase.then.code}) {
					t.Errorf("body = %+v, want only code %s", body, testcase.then.code)
				}
				return
			}
			if got := rec.Header().Get("Content-Type"); got != testcase.then.contentType {
				t.Errorf("Content-Type = %s, want %s", got, testcase.then.contentType)
			}
			if got := rec.Header().Get("Cache-Control"); got != testcase.then.cacheControl {
				t.Errorf("Cache-Control = %s, want %s", got, testcase.then.cacheControl)
			}
			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %s", got)
			}
			if rec.Body.String() != pdfBody {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestServeConditionalRequests(t *testing.T) {
	coordinator := &common.Identity{ID: "K1", Role: common.RoleCoordinator}
	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)

	for name, testcase := range map[string]struct {
		target       string
		status       int
		lastModified bool
	}{
		"cv is never revalidated":              {target: "/uploads/cv/" + cvName, status: http.StatusOK},
		"fiscal document is never revalidated": {target: "/uploads/fiscal-document/" + fiscalName, status: http.StatusOK},
		"photo honours If-Modified-Since":      {target: "/uploads/photo/" + photoName, status: http.StatusNotModified, lastModified: true},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, coordinator)
			req := httptest.NewRequest(http.MethodGet, testcase.target, nil)
			req.Header.Set("If-Modified-Since", later)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			if rec.Code != testcase.status {
				t.Fatalf("status = %d, want %d", rec.Code, testcase.status)
			}
			if got := rec.Header().Get("Last-Modified") != ""; got != testcase.lastModified {
				t.Errorf("Last-Modified present = %v, want %v", got, testcase.lastModified)
			}
		})
	}
}

func multipartBody(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "cv.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func TestReplace(t *testing.T) {
	owner := &common.Identity{ID: "U123", Role: common.RoleStudent}
	f := newFixture(t, owner)

	body, contentType := multipartBody(t, "file", []byte(pdfBody))
	req := httptest.NewRequest(http.MethodPost, "/uploads/cv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var created struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Path != "uploads/cv/cv_U123_1781524800000.pdf" {
		t.Errorf("path = %s", created.Path)
	}

	// the old name is gone both from the record and from disk
	if _, err := f.files.Open("cv", cvName); apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("old file still readable: %v", err)
	}
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/cv/"+cvName, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("old name status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+created.Path, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("new name status = %d", rec.Code)
	}
}

func TestReplaceRejects(t *testing.T) {
	for name, testcase := range map[string]struct {
		caller  *common.Identity
		target  string
		field   string
		content []byte
		status  int
		code    string
	}{
		"company cannot upload a cv": {
			caller: &common.Identity{ID: "C9", Role: common.RoleCompany}, target: "/uploads/cv", field: "file", content: []byte(pdfBody),
			status: http.StatusForbidden, code: "NotAuthorized",
		},
		"missing file field": {
			caller: &common.Identity{ID: "U123", Role: common.RoleStudent}, target: "/uploads/cv", field: "document", content: []byte(pdfBody),
			status: http.StatusBadRequest, code: "InvalidUpload",
		},
		"text is not a pdf": {
			caller: &common.Identity{ID: "U123", Role: common.RoleStudent}, target: "/uploads/cv", field: "file", content: []byte("hola"),
			status: http.StatusBadRequest, code: "InvalidUpload",
		},
		"unknown segment": {
			caller: &common.Identity{ID: "U123", Role: common.RoleStudent}, target: "/uploads/avatars", field: "file", content: []byte(pdfBody),
			status: http.StatusNotFound, code: "NotFound",
		},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, testcase.caller)
			body, contentType := multipartBody(t, testcase.field, testcase.content)
			req := httptest.NewRequest(http.MethodPost, testcase.target, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			if rec.Code != testcase.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, testcase.status, rec.Body)
			}
			var errBody common.ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
				t.Fatal(err)
			}
			if errBody.Error != testcase.code {
				t.Errorf("code = %s, want %s", errBody.Error, testcase.code)
			}
			if ref, _ := f.directory.StoredReference(context.Background(), uploaddomain.KindCV, "U123"); ref != uploaddomain.StoredPath(uploaddomain.KindCV, cvName) {
				t.Errorf("reference changed to %s", ref)
			}
		})
	}
}
