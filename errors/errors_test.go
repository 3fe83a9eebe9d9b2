package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationf(t *testing.T) {
	err := Validationf("node id %q is empty", "")
	require.NotNil(t, err)
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "is empty")
}

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("version %s", "v0.0.3")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestUnsupportedFormatf(t *testing.T) {
	err := UnsupportedFormatf("dot import")
	assert.True(t, IsUnsupportedFormat(err))
}

func TestCategorySurvivesWrapping(t *testing.T) {
	err := Validationf("bad input")
	wrapped := Wrap(err, "import failed")

	assert.True(t, IsValidation(wrapped))
	assert.Contains(t, wrapped.Error(), "import failed")
	assert.Contains(t, wrapped.Error(), "bad input")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
}
