package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

type auditQueryService struct {
	BaseService
	repo portsrepo.AuditLogRepositoryFacade
}

// NewAuditQueryService creates the read side of the audit log.
func NewAuditQueryService(repo portsrepo.AuditLogRepositoryFacade) portssvc.AuditQuerySvc {
	return &auditQueryService{repo: repo}
}

var _ portssvc.AuditQuerySvc = (*auditQueryService)(nil)

func (s *auditQueryService) ListAuditLogs(ctx context.Context, businessID *int64, params dto.ListAuditLogsParams) (*dto.ListAuditLogsResponse, error) {
	if err := validateRequest(params); err != nil {
		return nil, err
	}
	filter := domain.AuditLogFilter{
		BusinessID: businessID,
		CauserID:   params.CauserID,
		SubjectID:  params.SubjectID,
		Action:     domain.AuditAction(params.Event),
	}
	if params.SubjectType != "" {
		kind, err := domain.ParseEntityKind(params.SubjectType)
		if err != nil {
			return nil, err
		}
		filter.SubjectKind = kind
	}
	if params.From != "" {
		from, err := dto.ParseDate(params.From)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter.From = &from.Time
	}
	if params.To != "" {
		to, err := dto.ParseDate(params.To)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		// Inclusive of the whole day.
		end := to.Time.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	var token *string
	if params.NextToken != "" {
		if _, _, err := pagination.DecodeToken(params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		token = &params.NextToken
	}

	entries, next, err := s.repo.ListAuditLogs(ctx, filter, pagination.ClampLimit(params.Limit), token)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit logs", slog.Bool("scoped", businessID != nil))
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	if entries == nil {
		entries = []domain.AuditLogEntry{}
	}
	return &dto.ListAuditLogsResponse{Entries: entries, NextToken: next}, nil
}
