package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
)

// VoidDating selects the entry date given to reversal lines on void.
type VoidDating string

const (
	VoidOnVoidDate     VoidDating = "void_date"
	VoidOnOriginalDate VoidDating = "original_date"
)

// Valid reports whether d is a known dating policy.
func (d VoidDating) Valid() bool {
	return d == VoidOnVoidDate || d == VoidOnOriginalDate
}

const (
	MinAmountPrecision int32 = 2
	MaxAmountPrecision int32 = 6
)

// BusinessSettings holds per-business posting policy.
type BusinessSettings struct {
	BusinessID        int64      `json:"businessID"`
	AmountPrecision   int32      `json:"amountPrecision"`
	VoidDating        VoidDating `json:"voidDating"`
	StrictGroupNature bool       `json:"strictGroupNature"`
	AuditFields
}

// Validate checks the settings are within supported bounds.
func (s BusinessSettings) Validate() error {
	if s.AmountPrecision < MinAmountPrecision || s.AmountPrecision > MaxAmountPrecision {
		return fmt.Errorf("%w: amount precision must be between %d and %d", apperrors.ErrValidation, MinAmountPrecision, MaxAmountPrecision)
	}
	if !s.VoidDating.Valid() {
		return fmt.Errorf("%w: unknown void dating %q", apperrors.ErrValidation, s.VoidDating)
	}
	return nil
}
