package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MAdityaRao/Resume-agent/domain/entities"
	"github.com/MAdityaRao/Resume-agent/domain/repositories"
	"github.com/MAdityaRao/Resume-agent/internal/auth"
	"github.com/MAdityaRao/Resume-agent/internal/websocket"
)

// InitRoutes initializes all API routes.
func InitRoutes(e *echo.Echo, hub *websocket.Hub, store repositories.InterviewRepository, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "resume-agent",
		})
	})

	v1 := e.Group("/api/v1")

	v1.POST("/token", func(c echo.Context) error {
		return issueToken(c, logger)
	})

	v1.GET("/interviews", func(c echo.Context) error {
		return listInterviews(c, store, logger)
	})

	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, logger)
	})
}

func issueToken(c echo.Context, logger *zap.Logger) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind token request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.Room == "" || req.Identity == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Room and identity are required",
		})
	}

	connectionType := req.ConnectionType
	if connectionType == "" {
		connectionType = string(entities.ConnectionStandard)
	}
	if connectionType != string(entities.ConnectionStandard) &&
		connectionType != string(entities.ConnectionTelephony) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_connection_type",
			Message: "Connection type must be standard or telephony",
		})
	}

	token, err := auth.GenerateJoinToken(req.Room, req.Identity, connectionType)
	if err != nil {
		logger.Error("Failed to generate join token",
			zap.String("room", req.Room),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate join token",
		})
	}

	logger.Info("Issued join token",
		zap.String("room", req.Room),
		zap.String("identity", req.Identity))

	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(auth.TokenTTL),
		Room:      req.Room,
		Identity:  req.Identity,
	})
}

func listInterviews(c echo.Context, store repositories.InterviewRepository, logger *zap.Logger) error {
	room := c.QueryParam("room")
	if room == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_room",
			Message: "Query parameter room is required",
		})
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "Limit must be between 1 and 100",
			})
		}
		limit = parsed
	}

	interviews, err := store.ListByRoom(c.Request().Context(), room, limit)
	if err != nil {
		logger.Error("Failed to list interviews",
			zap.String("room", room),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to fetch interviews",
		})
	}

	if interviews == nil {
		interviews = []*entities.Interview{}
	}
	return c.JSON(http.StatusOK, interviews)
}

// websocketWithAuth admits authenticated participants into interview
// sessions. The token comes from the Authorization header, or from the
// token query parameter since browser WebSocket clients cannot set headers.
func websocketWithAuth(hub *websocket.Hub, c echo.Context, logger *zap.Logger) error {
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		token = c.QueryParam("token")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Join token is required",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired join token",
		})
	}

	if claims.Role != "participant" {
		logger.Warn("WebSocket connection rejected: invalid role",
			zap.String("role", claims.Role))
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "invalid_role",
			Message: "Only participant tokens are allowed",
		})
	}

	return websocket.ServeSession(hub, c, claims, logger)
}
