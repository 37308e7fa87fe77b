package domain_test

import (
	"testing"
	"time"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/upload/domain"
)

func TestParseFilename(t *testing.T) {
	type when struct {
		name     string
		expected domain.Kind
	}
	type then struct {
		code  string
		owner string
		ts    int64
		ext   string
	}

	for title, testcase := range map[string]struct {
		when
		then
	}{
		"cv": {
			when{"cv_U123_1718000000000.pdf", domain.KindCV},
			then{owner: "U123", ts: 1718000000000, ext: "pdf"},
		},
		"fiscal document with upper case extension": {
			when{"fiscal_C9_1718000000000.PDF", domain.KindFiscal},
			then{owner: "C9", ts: 1718000000000, ext: "pdf"},
		},
		"owner containing underscores": {
			when{"photo_user_42_1718000000000.webp", domain.KindPhoto},
			then{owner: "user_42", ts: 1718000000000, ext: "webp"},
		},
		"parent traversal": {
			when{"..cv_U123_1.pdf", domain.KindCV},
			then{code: apperror.CodeInvalidFilename},
		},
		"forward slash": {
			when{"cv_U123/1.pdf", domain.KindCV},
			then{code: apperror.CodeInvalidFilename},
		},
		"backslash": {
			when{`cv_U123\1.pdf`, domain.KindCV},
			then{code: apperror.CodeInvalidFilename},
		},
		"traversal wins over malformed": {
			when{"../etc/passwd", domain.KindCV},
			then{code: apperror.CodeInvalidFilename},
		},
		"empty": {
			when{"", domain.KindCV},
			then{code: apperror.CodeInvalidFilename},
		},
		"two segments": {
			when{"cv_1718000000000.pdf", domain.KindCV},
			then{code: apperror.CodeMalformedFilename},
		},
		"kind mismatch": {
			when{"photo_U123_1718000000000.png", domain.KindCV},
			then{code: apperror.CodeMalformedFilename},
		},
		"fiscal served through cv route": {
			when{"fiscal_C9_1718000000000.pdf", domain.KindCV},
			then{code: apperror.CodeMalformedFilename},
		},
		"empty owner": {
			when{"cv__1718000000000.pdf", domain.KindCV},
			then{code: apperror.CodeMalformedFilename},
		},
		"non numeric timestamp": {
			when{"cv_U123_yesterday.pdf", domain.KindCV},
			then{code: apperror.CodeMalformedFilename},
		},
		"no extension": {
			when{"cv_U123_1718000000000", domain.KindCV},
			then{code: apperror.CodeMalformedFilename},
		},
		"trailing dot": {
			when{"cv_U123_1718000000000.", domain.KindCV},
			then{code: apperror.CodeMalformedFilename},
		},
	} {
		t.Run(title, func(t *testing.T) {
			got, err := domain.ParseFilename(testcase.when.name, testcase.when.expected)
			if testcase.then.code != "" {
				if apperror.CodeOf(err) != testcase.then.code || apperror.KindOf(err) != apperror.KindValidation {
					t.Fatalf("error = %v, want %s", err, testcase.then.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.OwnerID != testcase.then.owner || got.Timestamp != testcase.then.ts || got.Ext != testcase.then.ext {
				t.Errorf("parsed = %+v, want %+v", got, testcase.then)
			}
		})
	}
}

func TestNewFilenameRoundTrip(t *testing.T) {
	at := time.Date(2026, 6, 15, 12, 0, 0, 123_000_000, time.UTC)
	name := domain.NewFilename(domain.KindFiscal, "C9", at, ".PDF")
	if name != "fiscal_C9_1781524800123.pdf" {
		t.Fatalf("name = %s", name)
	}
	parsed, err := domain.ParseFilename(name, domain.KindFiscal)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.OwnerID != "C9" || parsed.Timestamp != at.UnixMilli() {
		t.Errorf("parsed = %+v", parsed)
	}
	if got := domain.StoredPath(domain.KindFiscal, name); got != "uploads/fiscal-document/"+name {
		t.Errorf("stored path = %s", got)
	}
}

func TestContentType(t *testing.T) {
	for ext, want := range map[string]string{
		"pdf":  "application/pdf",
		"PNG":  "image/png",
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"webp": "image/webp",
		"svg":  "image/svg+xml",
		".pdf": "application/pdf",
		"docx": "application/octet-stream",
		"":     "application/octet-stream",
	} {
		if got := domain.ContentType(ext); got != want {
			t.Errorf("ContentType(%q) = %s, want %s", ext, got, want)
		}
	}
}

func TestKind(t *testing.T) {
	for segment, want := range map[string]domain.Kind{
		"cv":              domain.KindCV,
		"photo":           domain.KindPhoto,
		"fiscal-document": domain.KindFiscal,
	} {
		got, ok := domain.KindFromSegment(segment)
		if !ok || got != want || got.Segment() != segment {
			t.Errorf("KindFromSegment(%q) = %q %v", segment, got, ok)
		}
	}
	if _, ok := domain.KindFromSegment("fiscal"); ok {
		t.Error("fiscal is not a route segment")
	}

	for kind, want := range map[domain.Kind]string{
		domain.KindCV:     "private, no-store",
		domain.KindFiscal: "private, no-store",
		domain.KindPhoto:  "private, max-age=3600",
	} {
		if got := kind.CacheControl(); got != want {
			t.Errorf("%s cache = %q, want %q", kind, got, want)
		}
	}

	if !domain.KindPhoto.Accepts("image/webp") || domain.KindPhoto.Accepts("application/pdf") {
		t.Error("photo accepts images only")
	}
	if !domain.KindCV.Accepts("application/pdf") || domain.KindFiscal.Accepts("image/png") {
		t.Error("documents accept pdf only")
	}
}
