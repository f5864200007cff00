package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
	apperrors "github.com/allisson/inspecta/internal/errors"
	"github.com/allisson/inspecta/internal/httputil"
)

// TokenParser turns a raw bearer token into the user it was issued for.
type TokenParser interface {
	Parse(raw string) (*accessDomain.CurrentUser, error)
}

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Validates the signature and claims using parser.Parse()
// 3. Stores the resulting CurrentUser in the request context
//
// Missing, malformed or invalid tokens all answer 401 Unauthorized.
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(parser, logger))
//	router.GET("/protected", func(c *gin.Context) {
//	    user, _ := GetUser(c.Request.Context())
//	})
func AuthenticationMiddleware(parser TokenParser, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		raw := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if raw == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		user, err := parser.Parse(raw)
		if err != nil {
			logger.Debug("authentication failed: invalid token", slog.Any("error", err))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		logger.Debug("authentication successful", slog.String("user_id", user.ID))

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// GuardMiddleware enforces req for the authenticated user.
//
// MUST be used after AuthenticationMiddleware. A request without a user answers 401, a
// denied requirement answers 403.
func GuardMiddleware(
	guard accessUseCase.GuardUseCase,
	req accessDomain.Requirement,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c.Request.Context())
		if !ok {
			logger.Debug("guard failed: no authenticated user in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !guard.Evaluate(c.Request.Context(), user, req).Allowed {
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
