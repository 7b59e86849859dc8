package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSample struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Amount int    `json:"amount" validate:"gt=0"`
}

func TestFormatValidationErrors(t *testing.T) {
	v := validator.New()

	err := v.Struct(validationSample{Amount: -1})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 3)

	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
		assert.NotEmpty(t, d.Message)
	}
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Amount")
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-456")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}

func TestGetRequestID(t *testing.T) {
	t.Run("reads the context value first", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Set(RequestIDKey, "from-context")
		c.Request.Header.Set("X-Request-ID", "from-header")

		assert.Equal(t, "from-context", GetRequestID(c))
	})

	t.Run("falls back to the header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")

		assert.Equal(t, "from-header", GetRequestID(c))
	})
}

func TestHandleValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	v := validator.New()
	err := v.Struct(validationSample{Name: "x", Email: "x@example.com"})
	HandleValidationError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}
