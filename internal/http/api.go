package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/asadamin236/login-system-backend/internal/domain"
	"github.com/asadamin236/login-system-backend/internal/service"
	"github.com/asadamin236/login-system-backend/internal/token"
)

const ctxUserIDKey = "userID"

// Handler wires HTTP routes to the auth service.
type Handler struct {
	auth   service.AuthService
	tokens *token.Issuer
	logger logrus.FieldLogger
}

func NewHandler(auth service.AuthService, tokens *token.Issuer, logger logrus.FieldLogger) *Handler {
	return &Handler{
		auth:   auth,
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(h.requestLogMiddleware())

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)

			protected := auth.Group("")
			protected.Use(h.authRequired())
			{
				protected.GET("/profile", h.getProfile)
				protected.PUT("/profile", h.updateProfile)
				protected.GET("/users", h.listUsers)
			}
		}

		api.GET("/health", h.health)
	}

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Route not found: "+c.Request.Method+" "+c.Request.URL.Path)
	})
}

// Middleware

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func (h *Handler) requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Infof("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}

// authRequired gates a route behind bearer-token verification and stores the
// verified user id in the request context.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(c, http.StatusUnauthorized, "Access token required")
			c.Abort()
			return
		}

		identity, err := h.tokens.Verify(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			respondError(c, http.StatusForbidden, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, identity.UserID)
		c.Next()
	}
}

// Handlers

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			respondError(c, http.StatusBadRequest, "Please provide username, email, and password")
			return
		}
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, "User registered successfully", authResultToResponse(result))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			respondError(c, http.StatusBadRequest, "Please provide email and password")
			return
		}
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, "Login successful", authResultToResponse(result))
}

func (h *Handler) getProfile(c *gin.Context) {
	view, err := h.auth.GetProfile(c.Request.Context(), c.GetInt64(ctxUserIDKey))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    userToResponse(*view),
	})
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.auth.UpdateProfile(c.Request.Context(), c.GetInt64(ctxUserIDKey), service.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			respondError(c, http.StatusBadRequest, "Please provide at least one field to update")
			return
		}
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, "Profile updated successfully", userToResponse(*view))
}

func (h *Handler) listUsers(c *gin.Context) {
	views, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	users := make([]UserResponse, len(views))
	for i := range views {
		users[i] = userToResponse(views[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"count":   len(users),
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Responses

type AuthResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func authResultToResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		UserID:   result.UserID,
		Username: result.Username,
		Email:    result.Email,
		Token:    result.Token,
	}
}

func userToResponse(view domain.PublicUser) UserResponse {
	return UserResponse{
		ID:        view.ID,
		Username:  view.Username,
		Email:     view.Email,
		CreatedAt: view.CreatedAt.Format(time.RFC3339),
		UpdatedAt: view.UpdatedAt.Format(time.RFC3339),
	}
}

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondServiceError maps a service error kind to its HTTP status and
// caller-facing message.
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		respondError(c, http.StatusBadRequest, "Please provide all required fields")
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, http.StatusBadRequest, "Please provide a valid email address")
	case errors.Is(err, service.ErrInvalidUsername):
		respondError(c, http.StatusBadRequest, "Username must be between 1 and 50 characters")
	case errors.Is(err, service.ErrWeakPassword):
		respondError(c, http.StatusBadRequest, "Password must be at least 6 characters long")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusBadRequest, "Username already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "User not found")
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
