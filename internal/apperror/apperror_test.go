package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bolsatrabajo/api/internal/apperror"
)

func TestKindAndCodeSurviveWrapping(t *testing.T) {
	base := apperror.Duplicate(apperror.CodeDuplicateResponse, errors.New("E11000"))
	wrapped := fmt.Errorf("submit: %w", base)

	if got := apperror.KindOf(wrapped); got != apperror.KindDuplicate {
		t.Errorf("KindOf = %v, want %v", got, apperror.KindDuplicate)
	}
	if got := apperror.CodeOf(wrapped); got != apperror.CodeDuplicateResponse {
		t.Errorf("CodeOf = %q, want %q", got, apperror.CodeDuplicateResponse)
	}
	if !errors.Is(wrapped, apperror.Duplicate(apperror.CodeDuplicateResponse, nil)) {
		t.Error("errors.Is should match on kind and code")
	}
	if errors.Is(wrapped, apperror.Validation(apperror.CodeDuplicateResponse, "")) {
		t.Error("errors.Is must not match a different kind")
	}
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")
	if got := apperror.KindOf(err); got != apperror.KindInternal {
		t.Errorf("KindOf = %v, want internal", got)
	}
	if got := apperror.CodeOf(err); got != "" {
		t.Errorf("CodeOf = %q, want empty", got)
	}
}
