package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/clima-cdmx/archivador/pkg/util/exception"

	"github.com/stretchr/testify/assert"
)

func TestNewUnexpectedError(t *testing.T) {
	originalErr := errors.New("connection refused")
	pe := exception.NewUnexpectedError("openmeteo", "API call failed", originalErr)

	assert.Equal(t, "openmeteo", pe.Module)
	assert.Equal(t, "API call failed", pe.Message)
	assert.Equal(t, originalErr, pe.Unwrap())
	assert.Equal(t, exception.KindUnexpected, pe.Kind())
	assert.Contains(t, pe.Error(), "[openmeteo] API call failed: connection refused")
	assert.NotEmpty(t, pe.StackTrace)
	assert.False(t, exception.IsHTTPError(pe))
}

func TestNewHTTPError(t *testing.T) {
	pe := exception.NewHTTPError("openmeteo", 400, `{"reason":"Latitude must be in range"}`)

	assert.Equal(t, exception.KindHTTP, pe.Kind())
	assert.Equal(t, 400, pe.StatusCode)
	assert.Contains(t, pe.ResponseBody, "Latitude must be in range")
	assert.Contains(t, pe.Error(), "unexpected status code 400")
	assert.True(t, exception.IsHTTPError(pe))
}

func TestIsHTTPErrorThroughWrapping(t *testing.T) {
	pe := exception.NewHTTPError("openmeteo", 429, "too many requests")
	wrapped := fmt.Errorf("fetch stage: %w", pe)

	assert.True(t, exception.IsHTTPError(wrapped))
	assert.False(t, exception.IsHTTPError(errors.New("plain error")))
	assert.False(t, exception.IsHTTPError(nil))

	extracted := exception.AsPipelineError(wrapped)
	assert.NotNil(t, extracted)
	assert.Equal(t, 429, extracted.StatusCode)
}

func TestExtractMessage(t *testing.T) {
	pe := exception.NewUnexpectedError("processor", "failed to parse time", errors.New("bad layout"))
	assert.Equal(t, "failed to parse time", exception.ExtractMessage(pe))
	assert.Equal(t, "plain", exception.ExtractMessage(errors.New("plain")))
	assert.Equal(t, "", exception.ExtractMessage(nil))
}
