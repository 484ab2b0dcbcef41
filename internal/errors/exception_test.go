package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExceptionMatchesByKind(t *testing.T) {
	err := fmt.Errorf("create task: %w", ErrNoValidAssignee)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, "no valid assignee", Message(err))
}

func TestPersistenceHidesCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := Persistence(cause, "upsert execution")

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "upsert execution")
	assert.Equal(t, "storage failure", Message(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestStatusCodeForPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}

func TestDistinctSentinelsOfSameKind(t *testing.T) {
	assert.False(t, errors.Is(ErrNoActiveTeam, ErrNoValidAssignee))
	assert.True(t, errors.Is(Validation("no valid assignee"), ErrNoValidAssignee))
}
