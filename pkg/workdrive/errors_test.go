package workdrive

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicatesTraverseWrapping(t *testing.T) {
	readErr := statusFailure(KindRead, "read", "f1", http.StatusNotFound, nil)
	writeErr := statusFailure(KindWrite, "write", "f2", http.StatusConflict, nil)

	assert.True(t, IsReadError(readErr))
	assert.False(t, IsWriteError(readErr))
	assert.True(t, IsWriteError(fmt.Errorf("outer: %w", writeErr)))
	assert.False(t, IsReadError(errors.New("plain")))
	assert.False(t, IsWriteError(nil))
}

func TestErrorMessageRendering(t *testing.T) {
	err := statusFailure(KindWrite, "write", "folder/x.txt", http.StatusConflict, nil)
	assert.Equal(t, "File already exists", err.Message)
	assert.Contains(t, err.Error(), "write folder/x.txt")
	assert.Contains(t, err.Error(), "status 409")

	cause := errors.New("connection refused")
	werr := failure(KindRead, "read", "f1", cause)
	assert.Contains(t, werr.Error(), "connection refused")
	assert.ErrorIs(t, werr, cause)
}

func TestStatusFailureUsesEnvelope(t *testing.T) {
	body := []byte(`{"errors":[{"id":"F7003","title":"Resource not found"}]}`)
	err := statusFailure(KindRead, "delete", "f1", http.StatusNotFound, body)
	assert.Equal(t, "F7003: Resource not found", err.Message)

	err = statusFailure(KindRead, "delete", "f1", http.StatusBadGateway, []byte("<html>"))
	assert.Equal(t, "Unknown error", err.Message)
}
