package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/pkg/errors"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"reference missing", errors.NewReferenceMissingError("", "empty"), http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"validation", errors.NewValidationError("candidates", 0, "at least one candidate is required"), http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", errors.NewNotFoundError("run", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"rate limited", errors.NewAPIError("judge", 429, "slow down"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"unavailable", errors.NewAPIError("judge", 503, "down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			FromError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())
			var env Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, errors.New("secret database path"))
	assert.NotContains(t, w.Body.String(), "secret")
}
