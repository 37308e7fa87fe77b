package application

import (
	"context"
	"io"

	"github.com/bolsatrabajo/api/internal/upload/domain"
)

// OwnerDirectory resolves the records that own stored files. StoredReference
// returns an apperror NotFound when the owner does not exist.
type OwnerDirectory interface {
	StoredReference(ctx context.Context, kind domain.Kind, ownerID string) (string, error)
	SetReference(ctx context.Context, kind domain.Kind, ownerID, reference string) (previous string, err error)
	HasApplication(ctx context.Context, companyID, studentID string) (bool, error)
}

// FileStore persists file bytes under a per-kind directory.
type FileStore interface {
	Open(dir, name string) (File, error)
	Write(ctx context.Context, dir, name string, r io.Reader) error
	Remove(dir, name string) error
}

// File is an opened stored file.
type File interface {
	io.ReadSeekCloser
	Size() int64
}

// Authorizer decides whether a caller may read a stored file.
type Authorizer interface {
	CanAccess(ctx context.Context, caller domain.Identity, filename string, kind domain.Kind) (domain.Filename, error)
}

// UploadService replaces the file a caller owns.
type UploadService interface {
	Replace(ctx context.Context, caller domain.Identity, kind domain.Kind, r io.Reader) (string, error)
}
