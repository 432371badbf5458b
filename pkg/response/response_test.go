package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewire/coursewire/pkg/apperr"
)

func record(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		c.Set("request_id", "req-1")
		Success(c, http.StatusCreated, map[string]string{"id": "u1"}, "registered successfully")
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "registered successfully", body["message"])
	assert.Equal(t, "req-1", body["request_id"])
}

func TestFailMapsAppError(t *testing.T) {
	w := record(func(c *gin.Context) {
		Fail(c, apperr.NotFound("course not found"))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "course not found")
}

func TestFailHidesUnknownErrors(t *testing.T) {
	w := record(func(c *gin.Context) {
		Fail(c, errors.New("pq: relation missing"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "pq:")
}
