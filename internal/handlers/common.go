package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

const businessIDKey = "businessID"

// statusFor maps an application error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrContention):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a dto.ErrorResponse. Internal failures are
// logged in full and reported with a generic message.
func respondError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	body := dto.ErrorResponse{Error: err.Error(), Code: apperrors.Code(err)}

	switch status {
	case http.StatusInternalServerError:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		body.Error = "Failed to " + action
	case http.StatusServiceUnavailable:
		logger.Warn("Contention during "+action, slog.String("error", err.Error()))
		c.Header("Retry-After", "1")
	default:
		logger.Warn("Rejected request to "+action, slog.String("error", err.Error()), slog.String("code", body.Code))
	}
	c.AbortWithStatusJSON(status, body)
}

// badRequest reports malformed input that never reached a service.
func badRequest(c *gin.Context, msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Invalid request", slog.String("error", msg))
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg, Code: "validation"})
}

// int64Param parses a positive numeric path parameter. It writes a 400 and
// returns false when the value is not a valid id.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// businessScope resolves the :businessID path parameter once for every
// business-scoped route.
func businessScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := int64Param(c, businessIDKey)
		if !ok {
			return
		}
		c.Set(businessIDKey, id)
		ctx := middleware.WithLogger(c.Request.Context(),
			middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.Int64("business_id", id)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func businessID(c *gin.Context) int64 {
	return c.GetInt64(businessIDKey)
}

// callerID returns the caller set by middleware.CallerMiddleware.
func callerID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Caller ID not found in context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Code: "unauthenticated"})
	}
	return userID, ok
}

// dateQuery reads an optional date query parameter, defaulting to today.
func dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return dto.NewDate(time.Now().UTC()).Time, true
	}
	d, err := dto.ParseDate(raw)
	if err != nil {
		badRequest(c, "invalid "+name, err)
		return time.Time{}, false
	}
	return d.Time, true
}
