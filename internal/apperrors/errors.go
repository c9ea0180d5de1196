package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation is not allowed in the resource's current state.
var ErrConflict = errors.New("state conflict")

// ErrContention indicates a lock could not be acquired in time. Callers may retry.
var ErrContention = errors.New("resource busy, retry later")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// CodedError is a named failure with a stable code. It matches its kind
// sentinel with errors.Is, so callers can branch on either.
type CodedError struct {
	Code    string
	Kind    error
	Message string
}

func (e *CodedError) Error() string { return e.Message }

// Is reports whether target is the kind this error belongs to.
func (e *CodedError) Is(target error) bool { return target == e.Kind }

func newCoded(kind error, code, msg string) *CodedError {
	return &CodedError{Code: code, Kind: kind, Message: msg}
}

// Validation failures.
var (
	ErrUnbalancedVoucher        = newCoded(ErrValidation, "unbalanced_voucher", "voucher debits and credits do not balance")
	ErrDateOutsideFinancialYear = newCoded(ErrValidation, "date_outside_financial_year", "date is not inside any financial year")
	ErrInvalidHierarchy         = newCoded(ErrValidation, "invalid_hierarchy", "invalid account group hierarchy")
	ErrGroupNotEmpty            = newCoded(ErrValidation, "group_not_empty", "account group has child groups or ledger accounts")
	ErrProtectedGroup           = newCoded(ErrValidation, "protected_group", "system account groups cannot be removed or moved")
	ErrDuplicateSnapshot        = newCoded(ErrValidation, "duplicate_snapshot", "a ratio snapshot already exists for this year and date")
	ErrCannotDeleteDefault      = newCoded(ErrValidation, "cannot_delete_default", "the default currency cannot be deleted")
	ErrOverlappingPeriod        = newCoded(ErrValidation, "overlapping_period", "financial year overlaps an existing year")
	ErrEmptyVoucher             = newCoded(ErrValidation, "empty_voucher", "voucher has no journal lines")
	ErrInvalidLine              = newCoded(ErrValidation, "invalid_line", "journal line must carry exactly one non-zero positive amount")
	ErrPrecisionExceeded        = newCoded(ErrValidation, "precision_exceeded", "amount has more decimal places than the business allows")
	ErrVoucherTypeRule          = newCoded(ErrValidation, "voucher_type_rule", "lines do not satisfy the voucher type rules")
	ErrInactiveLedger           = newCoded(ErrValidation, "inactive_ledger", "ledger account is inactive or deleted")
	ErrConfirmationRequired     = newCoded(ErrValidation, "confirmation_required", "explicit confirmation is required")
)

// Lookup failures that carry their own code.
var (
	ErrInvalidCurrency = newCoded(ErrNotFound, "invalid_currency", "unknown currency code")
)

// State failures.
var (
	ErrFinancialYearLocked = newCoded(ErrConflict, "financial_year_locked", "financial year is locked")
	ErrNotPosted           = newCoded(ErrConflict, "not_posted", "voucher is not posted")
	ErrNotDraft            = newCoded(ErrConflict, "not_draft", "voucher is not a draft")
	ErrAlreadyLocked       = newCoded(ErrConflict, "already_locked", "financial year is already locked")
	ErrNotLocked           = newCoded(ErrConflict, "not_locked", "financial year is not locked")
)

// Code returns the stable code for err, falling back to its kind.
func Code(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrContention):
		return "contention"
	default:
		return "internal"
	}
}
