package dto

import "github.com/SscSPs/ledger_engine/internal/core/domain"

// ListAuditLogsParams defines the query parameters for the audit log.
type ListAuditLogsParams struct {
	CauserID    string `form:"causerID"`
	SubjectType string `form:"subjectType"`
	SubjectID   string `form:"subjectID"`
	Event       string `form:"event" binding:"omitempty,oneof=create update delete restore"`
	From        string `form:"from"`
	To          string `form:"to"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken   string `form:"nextToken"`
}

// ListAuditLogsResponse is a page of audit entries.
type ListAuditLogsResponse struct {
	Entries   []domain.AuditLogEntry `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
