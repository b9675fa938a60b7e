package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Conceptual-Machines/metrome-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(subject, role string) *Claims {
	return &Claims{
		Email: subject + "@example.com",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetCurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"owner": id, "role": GetCurrentUserRole(c)})
	})
	router.GET("/", handlers...)
	return router
}

func doRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	router := setupRouter(JWTAuth(cfg))

	expired := validClaims("alice", "")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Authorization required"},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized, "Invalid or expired token"},
		{
			"wrong secret",
			"Bearer " + signToken(t, validClaims("alice", ""), jwt.SigningMethodHS256, []byte("other")),
			http.StatusUnauthorized, "Invalid or expired token",
		},
		{
			"expired",
			"Bearer " + signToken(t, expired, jwt.SigningMethodHS256, []byte(testSecret)),
			http.StatusUnauthorized, "Invalid or expired token",
		},
		{
			"no subject",
			"Bearer " + signToken(t, &Claims{}, jwt.SigningMethodHS256, []byte(testSecret)),
			http.StatusUnauthorized, "Token has no subject",
		},
		{
			"valid",
			"Bearer " + signToken(t, validClaims("alice", "admin"), jwt.SigningMethodHS256, []byte(testSecret)),
			http.StatusOK, `"owner":"alice"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestJWTAuth_NumericUserID(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	router := setupRouter(JWTAuth(cfg))

	claims := &Claims{UserID: 42}
	w := doRequest(router, "Bearer "+signToken(t, claims, jwt.SigningMethodHS256, []byte(testSecret)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner":"42"`)
}

func TestOptionalJWTAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	router := setupRouter(OptionalJWTAuth(cfg))

	w := doRequest(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner":""`)

	w = doRequest(router, "Bearer not-a-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner":""`)

	w = doRequest(router, "Bearer "+signToken(t, validClaims("bob", ""), jwt.SigningMethodHS256, []byte(testSecret)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner":"bob"`)
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	router := setupRouter(OptionalJWTAuth(cfg), AdminRequired())

	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "Bearer "+signToken(t, validClaims("bob", "user"), jwt.SigningMethodHS256, []byte(testSecret)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, "Bearer "+signToken(t, validClaims("root", "admin"), jwt.SigningMethodHS256, []byte(testSecret)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}
