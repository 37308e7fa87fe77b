package application_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/upload/application"
	"github.com/bolsatrabajo/api/internal/upload/domain"
)

type ownerKey struct {
	kind  domain.Kind
	owner string
}

type fakeDirectory struct {
	mu           sync.Mutex
	references   map[ownerKey]string
	applications map[string][]string // company -> students
	failSet      error
}

func (f *fakeDirectory) StoredReference(_ context.Context, kind domain.Kind, ownerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref, ok := f.references[ownerKey{kind, ownerID}]
	if !ok {
		return "", apperror.NotFound(apperror.CodeNotFound)
	}
	return ref, nil
}

func (f *fakeDirectory) SetReference(_ context.Context, kind domain.Kind, ownerID, reference string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return "", f.failSet
	}
	previous := f.references[ownerKey{kind, ownerID}]
	f.references[ownerKey{kind, ownerID}] = reference
	return previous, nil
}

func (f *fakeDirectory) HasApplication(_ context.Context, companyID, studentID string) (bool, error) {
	for _, s := range f.applications[companyID] {
		if s == studentID {
			return true, nil
		}
	}
	return false, nil
}

const (
	cvU123     = "cv_U123_1718000000000.pdf"
	photoU123  = "photo_U123_1718000000000.jpg"
	fiscalC9   = "fiscal_C9_1718000000000.pdf"
	staleCV    = "cv_U123_1600000000000.pdf"
	orphanedCV = "cv_U999_1718000000000.pdf"
)

func directory() *fakeDirectory {
	return &fakeDirectory{
		references: map[ownerKey]string{
			{domain.KindCV, "U123"}:    "uploads/cv/" + cvU123,
			{domain.KindPhoto, "U123"}: "uploads/photo/" + photoU123,
			{domain.KindFiscal, "C9"}:  "uploads/fiscal-document/" + fiscalC9,
			{domain.KindCV, "U456"}:    "",
			{domain.KindFiscal, "C10"}: "uploads/fiscal-document/fiscal_C10_1.pdf",
		},
		applications: map[string][]string{
			"C9":  {"U123"},
			"C10": {"U456"},
		},
	}
}

var (
	studentU123 = domain.Identity{ID: "U123", Role: domain.RoleStudent}
	studentU456 = domain.Identity{ID: "U456", Role: domain.RoleStudent}
	companyC9   = domain.Identity{ID: "C9", Role: domain.RoleCompany}
	companyC10  = domain.Identity{ID: "C10", Role: domain.RoleCompany}
	coordinator = domain.Identity{ID: "K1", Role: domain.RoleCoordinator}
)

func TestCanAccessMatrix(t *testing.T) {
	type when struct {
		caller   domain.Identity
		filename string
		kind     domain.Kind
	}

	allow := apperror.Kind(-1)

	for name, testcase := range map[string]struct {
		when
		then apperror.Kind
	}{
		"cv: owner":                            {when{studentU123, cvU123, domain.KindCV}, allow},
		"cv: coordinator":                      {when{coordinator, cvU123, domain.KindCV}, allow},
		"cv: company with an application":      {when{companyC9, cvU123, domain.KindCV}, allow},
		"cv: company without an application":   {when{companyC10, cvU123, domain.KindCV}, apperror.KindAuthorization},
		"cv: another student":                  {when{studentU456, cvU123, domain.KindCV}, apperror.KindAuthorization},
		"photo: owner":                         {when{studentU123, photoU123, domain.KindPhoto}, allow},
		"photo: coordinator":                   {when{coordinator, photoU123, domain.KindPhoto}, allow},
		"photo: company with an application":   {when{companyC9, photoU123, domain.KindPhoto}, apperror.KindAuthorization},
		"photo: another student":               {when{studentU456, photoU123, domain.KindPhoto}, apperror.KindAuthorization},
		"fiscal: owning company":               {when{companyC9, fiscalC9, domain.KindFiscal}, allow},
		"fiscal: coordinator":                  {when{coordinator, fiscalC9, domain.KindFiscal}, allow},
		"fiscal: another company":              {when{companyC10, fiscalC9, domain.KindFiscal}, apperror.KindAuthorization},
		"fiscal: student":                      {when{studentU123, fiscalC9, domain.KindFiscal}, apperror.KindAuthorization},
		"fiscal: student sharing the owner id": {when{domain.Identity{ID: "C9", Role: domain.RoleStudent}, fiscalC9, domain.KindFiscal}, apperror.KindAuthorization},
		"cv: another student, guessed name":    {when{studentU456, "cv_U123_1718000000001.pdf", domain.KindCV}, apperror.KindAuthorization},
		"cv: another student, unknown owner":   {when{studentU456, orphanedCV, domain.KindCV}, apperror.KindAuthorization},
		"fiscal: student, unknown company":     {when{studentU123, "fiscal_C77_1718000000000.pdf", domain.KindFiscal}, apperror.KindAuthorization},
		"stale filename after replacement":     {when{studentU123, staleCV, domain.KindCV}, apperror.KindNotFound},
		"owner without any reference":          {when{coordinator, "cv_U456_1718000000000.pdf", domain.KindCV}, apperror.KindNotFound},
		"unknown owner":                        {when{coordinator, orphanedCV, domain.KindCV}, apperror.KindNotFound},
		"traversal":                            {when{coordinator, "../" + cvU123, domain.KindCV}, apperror.KindValidation},
		"kind mismatch":                        {when{coordinator, photoU123, domain.KindCV}, apperror.KindValidation},
		"anonymous caller":                     {when{domain.Identity{}, cvU123, domain.KindCV}, apperror.KindAuthentication},
	} {
		t.Run(name, func(t *testing.T) {
			testee := application.NewAuthorizer(directory())

			file, err := testee.CanAccess(context.Background(), testcase.when.caller, testcase.when.filename, testcase.when.kind)

			if testcase.then == allow {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if file.Name != testcase.when.filename {
					t.Errorf("file = %+v", file)
				}
				return
			}
			if err == nil {
				t.Fatal("access granted, want denial")
			}
			if got := apperror.KindOf(err); got != testcase.then {
				t.Errorf("kind = %s, want %s", got, testcase.then)
			}
		})
	}
}

// countingDirectory records owner lookups.
type countingDirectory struct {
	*fakeDirectory
	lookups int
}

func (c *countingDirectory) StoredReference(ctx context.Context, kind domain.Kind, ownerID string) (string, error) {
	c.lookups++
	return c.fakeDirectory.StoredReference(ctx, kind, ownerID)
}

func TestCanAccessRejectsBeforeLookup(t *testing.T) {
	for _, name := range []string{"..", "a/b", `a\b`, "cv_U123", "photo_U123_1.jpg"} {
		dir := &countingDirectory{fakeDirectory: directory()}
		testee := application.NewAuthorizer(dir)
		if _, err := testee.CanAccess(context.Background(), coordinator, name, domain.KindCV); err == nil {
			t.Errorf("%q accepted", name)
		}
		if dir.lookups != 0 {
			t.Errorf("%q caused %d owner lookups", name, dir.lookups)
		}
	}
}

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

type fakeFiles struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: map[string][]byte{}}
}

func (f *fakeFiles) Open(dir, name string) (application.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[dir+"/"+name]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeNotFound)
	}
	return memoryFile{bytes.NewReader(data)}, nil
}

func (f *fakeFiles) Write(_ context.Context, dir, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[dir+"/"+name] = data
	return nil
}

func (f *fakeFiles) Remove(dir, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := dir + "/" + name
	if _, ok := f.files[key]; !ok {
		return fmt.Errorf("%s: not exist", key)
	}
	delete(f.files, key)
	return nil
}

func (f *fakeFiles) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]string, 0, len(f.files))
	for k := range f.files {
		result = append(result, k)
	}
	return result
}

func TestCanAccessRefusalDoesNotRevealExistence(t *testing.T) {
	for name, caller := range map[string]domain.Identity{
		"another student":                studentU456,
		"company without an application": companyC10,
	} {
		t.Run(name, func(t *testing.T) {
			dir := &countingDirectory{fakeDirectory: directory()}
			testee := application.NewAuthorizer(dir)

			_, realErr := testee.CanAccess(context.Background(), caller, cvU123, domain.KindCV)
			_, guessedErr := testee.CanAccess(context.Background(), caller, "cv_U123_1718000000001.pdf", domain.KindCV)

			if apperror.KindOf(realErr) != apperror.KindOf(guessedErr) || apperror.CodeOf(realErr) != apperror.CodeOf(guessedErr) {
				t.Errorf("real file: %v, guessed file: %v", realErr, guessedErr)
			}
			if apperror.KindOf(realErr) != apperror.KindAuthorization {
				t.Errorf("kind = %s, want authorization", apperror.KindOf(realErr))
			}
			if dir.lookups != 0 {
				t.Errorf("refused caller caused %d owner lookups", dir.lookups)
			}
		})
	}
}
