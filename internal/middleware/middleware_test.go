package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func protected(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", RequireAuth(testSecret, enabled), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(subjectKey))
	})
	return r
}

func get(r http.Handler, url, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	token, err := GenerateToken(testSecret, "owner")
	require.NoError(t, err)
	r := protected(true)

	w := get(r, "/p", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner", w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/p?token="+token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", "Bearer garbage").Code)

	other, err := GenerateToken([]byte("other"), "owner")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", "Bearer "+other).Code)
}

func TestRequireAuth_Expired(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "owner",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(protected(true), "/p", "Bearer "+token).Code)
}

func TestRequireAuth_Disabled(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(protected(false), "/p", "").Code)
}

func cors(h http.Handler, method, origin, requested string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/routes", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if requested != "" {
		req.Header.Set("Access-Control-Request-Method", requested)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS([]string{"http://localhost:3000"})(next)

	w := cors(h, http.MethodOptions, "http://localhost:3000", http.MethodPatch)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = cors(h, http.MethodOptions, "http://localhost:3000", "TRACE")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = cors(h, http.MethodOptions, "http://evil.example", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = cors(h, http.MethodGet, "http://evil.example", "")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = cors(h, http.MethodGet, "http://localhost:3000", "")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = cors(h, http.MethodGet, "", "")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AnyOrigin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	w := cors(CORS(nil)(next), http.MethodOptions, "http://anywhere.example", http.MethodDelete)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://anywhere.example", w.Header().Get("Access-Control-Allow-Origin"))
}
