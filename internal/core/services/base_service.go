package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/go-playground/validator/v10"
)

// validate checks request DTOs with the same tags gin binds them with, so
// callers outside the HTTP layer get the same guarantees.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}()

// BaseService provides common functionality for all services
type BaseService struct {
	Audit portssvc.AuditRecorder
	Clock func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// LogFailure logs err unless it is an expected caller-side outcome.
func (s *BaseService) LogFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	if isExpected(err) {
		s.LogDebug(ctx, msg, append([]any{slog.String("reason", err.Error())}, keyvals...)...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

func isExpected(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrDuplicate) ||
		errors.Is(err, apperrors.ErrContention)
}

func (s *BaseService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// record hands a committed mutation to the audit recorder.
func (s *BaseService) record(ctx context.Context, businessID *int64, action domain.AuditAction, subject domain.EntityRef, before, after any, userID string) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, domain.AuditEvent{
		BusinessID: businessID,
		Action:     action,
		Subject:    subject,
		Before:     before,
		After:      after,
		CauserID:   userID,
	})
}

func newAuditFields(userID string, now time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

func touch(f *domain.AuditFields, userID string, now time.Time) {
	f.LastUpdatedAt = now
	f.LastUpdatedBy = userID
}

// validateRequest runs the binding tags of a request DTO.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
