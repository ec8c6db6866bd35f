package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve logger from the standard context
		logger := GetLoggerFromCtx(c.Request.Context())
		logger.Debug("AuthMiddleware", "method", c.Request.Method, "path", c.Request.URL.Path)
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid", "header", authHeader)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]

		// Parse and validate the token
		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			// Check the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})

		if err != nil {
			logger.Warn("Invalid token", "error", err)
			status := http.StatusUnauthorized
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		if claims, ok := token.Claims.(*jwt.RegisteredClaims); ok && token.Valid {
			userID := claims.Subject
			if userID == "" {
				logger.Error("User ID (subject) missing from valid token")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
				return
			}

			// Store the user ID in the context (using standard context)
			ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, userID)

			// Add user ID to the logger
			enrichedLogger := logger.With(slog.String("user_id", userID))

			// Store the *enriched* logger back into both contexts
			c.Request = c.Request.WithContext(WithLogger(ctxWithUser, enrichedLogger))
			c.Set(string(loggerKey), enrichedLogger)
			c.Set(string(userIDKey), userID)

			c.Next() // Proceed to the next handler
		} else {
			logger.Warn("Invalid token claims or token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		}
	}
}

// PermissionChecker answers grant lookups for the authenticated actor.
type PermissionChecker interface {
	HasPermission(ctx context.Context, actorID, permissionName string) (bool, error)
}

// RequirePermission aborts with 403 unless the authenticated actor holds
// permission. It must run after AuthMiddleware.
func RequirePermission(checker PermissionChecker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		actorID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		allowed, err := checker.HasPermission(c.Request.Context(), actorID, permission)
		if err != nil {
			logger.Error("Permission check failed", slog.String("permission", permission), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
			return
		}
		if !allowed {
			logger.Warn("Permission denied", slog.String("permission", permission))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Next()
	}
}

// OrganizationAccessChecker authorizes the actor against one organization.
type OrganizationAccessChecker interface {
	AuthorizeOrganizationAccess(ctx context.Context, actorID, organizationID string) error
}

// RequireOrganizationAccess aborts unless the authenticated actor belongs to
// the organization named by the param path parameter. Non-members get 404.
// It must run after AuthMiddleware.
func RequireOrganizationAccess(checker OrganizationAccessChecker, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		actorID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		organizationID := c.Param(param)
		if err := checker.AuthorizeOrganizationAccess(c.Request.Context(), actorID, organizationID); err != nil {
			status := apperrors.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				logger.Error("Organization access check failed", slog.String("organization_id", organizationID), slog.String("error", err.Error()))
				c.AbortWithStatusJSON(status, gin.H{"error": "Failed to check organization access"})
				return
			}
			message := "Organization not found"
			if status == http.StatusForbidden {
				message = "Forbidden"
			}
			logger.Warn("Organization access denied", slog.String("organization_id", organizationID))
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Next()
	}
}
