package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/lexis/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewServiceError("sync", "import", "failed to persist merge", cause)

	assert.Equal(t, "sync service import failed: failed to persist merge: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handler: %w", NewServiceError("vocab", "get", "failed", store.ErrVocabNotFound))
	var svcErr *ServiceError
	assert.ErrorAs(t, wrapped, &svcErr)
	assert.ErrorIs(t, wrapped, store.ErrVocabNotFound)

	bare := NewServiceError("session", "init", "max limit must be positive", nil)
	assert.Equal(t, "session service init failed: max limit must be positive", bare.Error())
}
