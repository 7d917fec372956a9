package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lexcase-backend/models"
	"lexcase-backend/repository"
)

// UserHeader carries the authenticated user's ID, set by the gateway in front
// of this service
const UserHeader = "X-User-ID"

const userIDKey = "user_id"

// UserLookup resolves user accounts; implemented by repository.UserRepository
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireUser rejects requests without a valid user header. When users is
// set, the account must also exist and be active.
func RequireUser(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserHeader)
		if raw == "" {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", UserHeader+" header is required")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid "+UserHeader+" header")
			return
		}

		if users != nil {
			user, err := users.GetByID(c.Request.Context(), id)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				respondServiceError(c, err)
				return
			}
			if err != nil || !user.IsActive {
				respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Unknown or inactive user")
				return
			}
		}

		c.Set(userIDKey, id)
		c.Next()
	}
}

func currentUser(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// RequestLogger logs one line per request
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
