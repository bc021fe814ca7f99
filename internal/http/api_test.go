package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/asadamin236/login-system-backend/internal/repository/memory"
	"github.com/asadamin236/login-system-backend/internal/security"
	"github.com/asadamin236/login-system-backend/internal/service"
	"github.com/asadamin236/login-system-backend/internal/token"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := service.NewAuthService(memory.NewUserRepository(), security.NewBcryptHasher(bcrypt.MinCost), issuer, logger)

	router := gin.New()
	NewHandler(svc, issuer, logger).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func register(t *testing.T, router *gin.Engine, username, email, password string) map[string]any {
	t.Helper()

	rec, payload := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register response: %s", rec.Body.String())
	return payload["data"].(map[string]any)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestRegister(t *testing.T) {
	router := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, payload["success"])

	data := payload["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "alice@x.com", data["email"])
	assert.NotEmpty(t, data["token"])
	assert.NotZero(t, data["userId"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "passwordHash")
}

func TestRegister_Failures(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "alice", "alice@x.com", "secret1")

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantMsg    string
	}{
		{
			"missing fields",
			gin.H{"username": "bob"},
			http.StatusBadRequest,
			"Please provide username, email, and password",
		},
		{
			"invalid email",
			gin.H{"username": "bob", "email": "not-an-email", "password": "secret1"},
			http.StatusBadRequest,
			"Please provide a valid email address",
		},
		{
			"weak password",
			gin.H{"username": "bob", "email": "bob@x.com", "password": "12345"},
			http.StatusBadRequest,
			"Password must be at least 6 characters long",
		},
		{
			"email taken",
			gin.H{"username": "someone", "email": "alice@x.com", "password": "secret1"},
			http.StatusBadRequest,
			"User with this email already exists",
		},
		{
			"username taken",
			gin.H{"username": "alice", "email": "other@x.com", "password": "secret1"},
			http.StatusBadRequest,
			"Username already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, payload := doJSON(t, router, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, false, payload["success"])
			assert.Equal(t, tt.wantMsg, payload["message"])
		})
	}
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)
	registered := register(t, router, "alice", "alice@x.com", "secret1")

	rec, payload := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Equal(t, registered["userId"], data["userId"])
	assert.NotEmpty(t, data["token"])

	rec, payload = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@x.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", payload["message"])

	rec, payload = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", payload["message"], "unknown email reads the same as wrong password")

	rec, payload = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide email and password", payload["message"])
}

func TestProfile_TokenHandling(t *testing.T) {
	router := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", payload["message"])

	rec, payload = doJSON(t, router, http.MethodGet, "/api/auth/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid or expired token", payload["message"])
}

func TestProfile_GetAndUpdate(t *testing.T) {
	router := newTestRouter(t)
	registered := register(t, router, "alice", "alice@x.com", "secret1")
	bearer := registered["token"].(string)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/auth/profile", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "alice@x.com", data["email"])
	assert.NotEmpty(t, data["createdAt"])
	assert.NotEmpty(t, data["updatedAt"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "passwordHash")

	rec, payload = doJSON(t, router, http.MethodPut, "/api/auth/profile", bearer, gin.H{
		"username": "alice2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data = payload["data"].(map[string]any)
	assert.Equal(t, "alice2", data["username"])
	assert.Equal(t, "alice@x.com", data["email"])

	rec, payload = doJSON(t, router, http.MethodPut, "/api/auth/profile", bearer, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide at least one field to update", payload["message"])

	rec, payload = doJSON(t, router, http.MethodPut, "/api/auth/profile", bearer, gin.H{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide a valid email address", payload["message"])

	// failed update leaves the profile untouched
	rec, payload = doJSON(t, router, http.MethodGet, "/api/auth/profile", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = payload["data"].(map[string]any)
	assert.Equal(t, "alice@x.com", data["email"])
}

func TestListUsers(t *testing.T) {
	router := newTestRouter(t)
	registered := register(t, router, "alice", "alice@x.com", "secret1")
	register(t, router, "bob", "bob@x.com", "secret1")
	bearer := registered["token"].(string)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/auth/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, payload = doJSON(t, router, http.MethodGet, "/api/auth/users", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), payload["count"])

	users := payload["data"].([]any)
	require.Len(t, users, 2)
	first := users[0].(map[string]any)
	assert.Equal(t, "bob", first["username"], "newest first")
	assert.NotContains(t, first, "password")
	assert.NotContains(t, first, "passwordHash")
}

func TestNoRoute(t *testing.T) {
	router := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["message"], "Route not found")
}

func TestRegisterLoginProfileScenario(t *testing.T) {
	router := newTestRouter(t)

	registered := register(t, router, "alice", "alice@x.com", "secret1")
	firstToken := registered["token"].(string)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	secondToken := payload["data"].(map[string]any)["token"].(string)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@x.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// both tokens authenticate the same user
	for _, bearer := range []string{firstToken, secondToken} {
		rec, payload = doJSON(t, router, http.MethodGet, "/api/auth/profile", bearer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := payload["data"].(map[string]any)
		assert.Equal(t, registered["userId"], data["id"])
		assert.NotContains(t, data, "password")
	}
}
