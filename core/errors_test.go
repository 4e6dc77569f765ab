package core

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError(nil, FieldError{Field: "parent_id", Error: "unknown parent"}, FieldError{Field: "role"})
	assert.Equal(t, "parent_id: unknown parent", err.Error())
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(pkgerrors.Wrap(err, "updating user")))

	assert.Equal(t, "boom", NewValidationError(errors.New("boom")).Error())
	assert.Equal(t, "validation failed", NewValidationError(nil).Error())
	assert.False(t, IsValidationError(errors.New("boom")))
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("integrity issue")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(pkgerrors.Wrap(err, "saving users")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Alexei", CleanString("  Alexei\t"))
	assert.Equal(t, "alexei@example.com", CleanString(" Alexei@Example.com ", true))
	assert.True(t, ContainsFold("Смирнова", "СМИР"))
	assert.False(t, ContainsFold("Smirnova", "ova!"))
}
