package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LinkUp/internal/pkg/errcode"
)

type stubVerifier map[string]uint64

func (s stubVerifier) Verify(_ context.Context, token string) (uint64, error) {
	id, ok := s[token]
	if !ok {
		return 0, errcode.ErrTokenInvalid
	}
	return id, nil
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	g := r.Group("/users/:userId", AuthMiddleware(stubVerifier{"good": 7}), RequireSelf("userId"))
	g.GET("", func(c *gin.Context) {
		uid, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": uid})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		header string
		status int
		code   errcode.Code
	}{
		{"missing header", "/users/7", "", http.StatusUnauthorized, errcode.CodeUnauthenticated},
		{"wrong scheme", "/users/7", "Basic good", http.StatusUnauthorized, errcode.CodeUnauthenticated},
		{"invalid token", "/users/7", "Bearer bad", http.StatusUnauthorized, errcode.CodeUnauthenticated},
		{"other user", "/users/8", "Bearer good", http.StatusForbidden, errcode.CodePermissionDenied},
		{"bad id", "/users/abc", "Bearer good", http.StatusBadRequest, errcode.CodeInvalidArgument},
		{"self", "/users/7", "Bearer good", http.StatusOK, ""},
	}
	r := newEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.code != "" {
				assert.Equal(t, string(tc.code), body["code"])
				assert.NotEmpty(t, body["msg"])
			} else {
				assert.Equal(t, float64(7), body["user_id"])
			}
		})
	}
}
