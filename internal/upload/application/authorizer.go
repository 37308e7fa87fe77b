package application

import (
	"context"
	"strings"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/upload/domain"
)

type authorizer struct {
	directory OwnerDirectory
}

func NewAuthorizer(directory OwnerDirectory) Authorizer {
	return &authorizer{directory: directory}
}

// CanAccess returns the parsed filename when access is granted. The role
// policy runs before the owner lookup, so a refused caller gets the same
// Authorization error whether or not the file exists. NotFound is only
// reported to callers the policy admits.
func (a *authorizer) CanAccess(ctx context.Context, caller domain.Identity, filename string, kind domain.Kind) (domain.Filename, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return domain.Filename{}, apperror.Unauthenticated("")
	}

	file, err := domain.ParseFilename(filename, kind)
	if err != nil {
		return domain.Filename{}, err
	}

	allowed, err := a.allowed(ctx, caller, file)
	if err != nil {
		return domain.Filename{}, err
	}
	if !allowed {
		return domain.Filename{}, apperror.Forbidden()
	}

	reference, err := a.directory.StoredReference(ctx, kind, file.OwnerID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return domain.Filename{}, apperror.NotFound(apperror.CodeNotFound)
		}
		return domain.Filename{}, err
	}
	if reference == "" || !strings.Contains(reference, file.Name) {
		return domain.Filename{}, apperror.NotFound(apperror.CodeNotFound)
	}
	return file, nil
}

func (a *authorizer) allowed(ctx context.Context, caller domain.Identity, file domain.Filename) (bool, error) {
	if caller.Is(domain.RoleCoordinator) {
		return true, nil
	}
	if caller.Is(file.Kind.OwnerRole()) && caller.ID == file.OwnerID {
		return true, nil
	}
	if file.Kind == domain.KindCV && caller.Is(domain.RoleCompany) {
		return a.directory.HasApplication(ctx, caller.ID, file.OwnerID)
	}
	return false, nil
}
