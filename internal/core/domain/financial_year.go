package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
)

// FinancialYear bounds the dates a business may post to.
type FinancialYear struct {
	ID         int64      `json:"id"`
	BusinessID int64      `json:"businessID"`
	Name       string     `json:"name"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"` // inclusive
	IsCurrent  bool       `json:"isCurrent"`
	IsLocked   bool       `json:"isLocked"`
	LockedAt   *time.Time `json:"lockedAt,omitempty"`
	LockedBy   *string    `json:"lockedBy,omitempty"`
	AuditFields
}

// ValidateYearRange checks that end is not before start.
func ValidateYearRange(start, end time.Time) error {
	if DateOnly(end).Before(DateOnly(start)) {
		return fmt.Errorf("%w: end date %s is before start date %s", apperrors.ErrValidation,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return nil
}

// Contains reports whether date falls within the year, both ends inclusive.
func (y FinancialYear) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(y.StartDate)) && !d.After(DateOnly(y.EndDate))
}

// Overlaps reports whether [start, end] intersects the year.
func (y FinancialYear) Overlaps(start, end time.Time) bool {
	return !DateOnly(start).After(DateOnly(y.EndDate)) && !DateOnly(end).Before(DateOnly(y.StartDate))
}

// CheckPostable validates that a voucher dated date may be written to y.
func (y FinancialYear) CheckPostable(date time.Time) error {
	if !y.Contains(date) {
		return fmt.Errorf("%w: %s is outside %s", apperrors.ErrDateOutsideFinancialYear, date.Format(time.DateOnly), y.Name)
	}
	if y.IsLocked {
		return fmt.Errorf("%w: %s", apperrors.ErrFinancialYearLocked, y.Name)
	}
	return nil
}

// DaysElapsed counts the days from the start of the year to date, inclusive.
func (y FinancialYear) DaysElapsed(date time.Time) int {
	return int(DateOnly(date).Sub(DateOnly(y.StartDate)).Hours()/24) + 1
}
