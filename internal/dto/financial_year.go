package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CreateFinancialYearRequest defines the data needed to open a financial year.
type CreateFinancialYearRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
	IsCurrent bool   `json:"isCurrent"`
}

// UnlockFinancialYearRequest must carry Confirm=true for an unlock to proceed.
type UnlockFinancialYearRequest struct {
	Confirm bool `json:"confirm"`
}

// FinancialYearResponse defines the data returned for a financial year.
type FinancialYearResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StartDate Date       `json:"startDate"`
	EndDate   Date       `json:"endDate"`
	IsCurrent bool       `json:"isCurrent"`
	IsLocked  bool       `json:"isLocked"`
	LockedAt  *time.Time `json:"lockedAt,omitempty"`
	LockedBy  *string    `json:"lockedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `json:"createdBy"`
}

// ToFinancialYearResponse converts a domain.FinancialYear to its DTO.
func ToFinancialYearResponse(y *domain.FinancialYear) FinancialYearResponse {
	return FinancialYearResponse{
		ID:        y.ID,
		Name:      y.Name,
		StartDate: NewDate(y.StartDate),
		EndDate:   NewDate(y.EndDate),
		IsCurrent: y.IsCurrent,
		IsLocked:  y.IsLocked,
		LockedAt:  y.LockedAt,
		LockedBy:  y.LockedBy,
		CreatedAt: y.CreatedAt,
		CreatedBy: y.CreatedBy,
	}
}

// ToListFinancialYearResponse converts financial years to DTOs.
func ToListFinancialYearResponse(years []domain.FinancialYear) []FinancialYearResponse {
	res := make([]FinancialYearResponse, len(years))
	for i := range years {
		res[i] = ToFinancialYearResponse(&years[i])
	}
	return res
}
