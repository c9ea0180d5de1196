package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CreateRatioRequest asks for a ratio snapshot of a year as of a date.
type CreateRatioRequest struct {
	FinancialYearID int64 `json:"financialYearID" binding:"required"`
	CalculationDate Date  `json:"calculationDate"`
}

// RatioResponse defines the data returned for a ratio snapshot.
type RatioResponse struct {
	ID              int64     `json:"id"`
	FinancialYearID int64     `json:"financialYearID"`
	CalculationDate Date      `json:"calculationDate"`
	domain.RatioValues
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToRatioResponse converts a domain.FinancialRatio to its DTO.
func ToRatioResponse(r *domain.FinancialRatio) RatioResponse {
	return RatioResponse{
		ID:              r.ID,
		FinancialYearID: r.FinancialYearID,
		CalculationDate: NewDate(r.CalculationDate),
		RatioValues:     r.RatioValues,
		CreatedAt:       r.CreatedAt,
		LastUpdatedAt:   r.LastUpdatedAt,
	}
}
