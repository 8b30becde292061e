package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func adminRouter(issuer *auth.Issuer) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/admin", AdminAuth(issuer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": c.GetString("admin")})
	})
	return r
}

func get(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	issuer, err := auth.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	token, err := issuer.GenerateToken("root")
	require.NoError(t, err)

	r := adminRouter(issuer)

	tests := []struct {
		name   string
		value  string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "Authorization", tt.value)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := get(r, "Authorization", "Bearer "+token)
	assert.JSONEq(t, `{"admin":"root"}`, w.Body.String())
}

func TestAdminAuth_DisabledWithoutIssuer(t *testing.T) {
	w := get(adminRouter(nil), "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := adminRouter(nil)

	w := get(r, RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = get(r, "", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
