package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/claims/internal/errors"
	"github.com/allisson/claims/internal/httputil"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		expectedOffset int
		expectedLimit  int
		errorMsg       string
	}{
		{name: "default values", url: "/", expectedOffset: 0, expectedLimit: httputil.DefaultPageLimit},
		{name: "valid custom values", url: "/?offset=10&limit=20", expectedOffset: 10, expectedLimit: 20},
		{name: "max limit", url: "/?limit=100", expectedLimit: httputil.MaxPageLimit},
		{name: "offset negative", url: "/?offset=-1", errorMsg: "offset must be a non-negative integer"},
		{name: "offset not an integer", url: "/?offset=abc", errorMsg: "offset must be a non-negative integer"},
		{name: "limit zero", url: "/?limit=0", errorMsg: "limit must be between 1 and 100"},
		{name: "limit exceeds max", url: "/?limit=101", errorMsg: "limit must be between 1 and 100"},
		{name: "limit not an integer", url: "/?limit=xyz", errorMsg: "limit must be between 1 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			offset, limit, err := httputil.ParsePagination(c)

			if tt.errorMsg != "" {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Equal(t, 0, offset)
				assert.Equal(t, 0, limit)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOffset, offset)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}
