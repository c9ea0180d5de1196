package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// voucherService is the posting engine. Every state change runs inside one
// unit of work: the voucher row, the financial year, the touched ledger
// accounts and the reference counter are locked in that order.
type voucherService struct {
	BaseService
	repos    portsrepo.TxRepositories
	uow      portsrepo.UnitOfWork
	defaults SettingsDefaults
}

// NewVoucherService creates the voucher posting engine.
func NewVoucherService(repos portsrepo.RepositoryProvider, defaults SettingsDefaults, audit portssvc.AuditRecorder) portssvc.VoucherSvcFacade {
	return &voucherService{
		BaseService: BaseService{Audit: audit},
		repos:       repos.TxRepositories,
		uow:         repos.UnitOfWork,
		defaults:    defaults,
	}
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

func (s *voucherService) CreateVoucherType(ctx context.Context, businessID int64, req dto.CreateVoucherTypeRequest, userID string) (*domain.VoucherType, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	vt := domain.VoucherType{
		BusinessID:     businessID,
		Name:           req.Name,
		Nature:         domain.VoucherNature(req.Nature),
		Prefix:         req.Prefix,
		StartingNumber: req.StartingNumber,
		NumberWidth:    req.NumberWidth,
		AuditFields:    newAuditFields(userID, s.now()),
	}
	if vt.StartingNumber == 0 {
		vt.StartingNumber = 1
	}
	if vt.NumberWidth == 0 {
		vt.NumberWidth = 5
	}
	id, err := s.repos.VoucherType.SaveVoucherType(ctx, vt)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create voucher type", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to create voucher type: %w", err)
	}
	vt.ID = id
	s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityVoucherType, id), nil, vt, userID)
	return &vt, nil
}

func (s *voucherService) ListVoucherTypes(ctx context.Context, businessID int64) ([]domain.VoucherType, error) {
	types, err := s.repos.VoucherType.ListVoucherTypes(ctx, businessID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list voucher types", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to list voucher types: %w", err)
	}
	if types == nil {
		return []domain.VoucherType{}, nil
	}
	return types, nil
}

func (s *voucherService) GetVoucher(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error) {
	v, err := s.repos.Voucher.FindVoucherByID(ctx, businessID, voucherID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get voucher", slog.Int64("voucher_id", voucherID))
		return nil, err
	}
	return v, nil
}

func (s *voucherService) ListVouchers(ctx context.Context, businessID int64, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	if err := validateRequest(params); err != nil {
		return nil, err
	}
	filter := domain.VoucherFilter{
		Status:        domain.VoucherStatus(params.Status),
		VoucherTypeID: params.VoucherTypeID,
	}
	for _, bound := range []struct {
		raw string
		dst **time.Time
	}{{params.From, &filter.From}, {params.To, &filter.To}} {
		if bound.raw == "" {
			continue
		}
		d, err := dto.ParseDate(bound.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		*bound.dst = &d.Time
	}
	var token *string
	if params.NextToken != "" {
		if _, _, err := pagination.DecodeToken(params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		token = &params.NextToken
	}

	vouchers, next, err := s.repos.Voucher.ListVouchers(ctx, businessID, filter, pagination.ClampLimit(params.Limit), token)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vouchers", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	res := &dto.ListVouchersResponse{Vouchers: make([]dto.VoucherResponse, 0, len(vouchers)), NextToken: next}
	for i := range vouchers {
		res.Vouchers = append(res.Vouchers, dto.ToVoucherResponse(&vouchers[i]))
	}
	return res, nil
}

// rejectLockedDate fails when date falls inside a locked year. Dates outside
// every year are allowed for drafts.
func rejectLockedDate(ctx context.Context, repo portsrepo.FinancialYearRepositoryFacade, businessID int64, date time.Time) error {
	year, err := repo.FindFinancialYearForDate(ctx, businessID, domain.DateOnly(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if year.IsLocked {
		return fmt.Errorf("%w: %s", apperrors.ErrFinancialYearLocked, year.Name)
	}
	return nil
}

// resolveCurrency returns the normalized voucher currency, falling back to
// the default currency.
func resolveCurrency(ctx context.Context, repo portsrepo.CurrencyReader, code string) (*domain.Currency, error) {
	if code == "" {
		def, err := repo.FindDefaultCurrency(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no default currency configured", apperrors.ErrInvalidCurrency)
			}
			return nil, err
		}
		return def, nil
	}
	return findCurrency(ctx, repo, code)
}

func (s *voucherService) draftFromRequest(ctx context.Context, repos portsrepo.TxRepositories, businessID int64, req dto.CreateVoucherRequest) (domain.Voucher, error) {
	if err := validateRequest(req); err != nil {
		return domain.Voucher{}, err
	}
	if req.Date.IsZero() {
		return domain.Voucher{}, fmt.Errorf("%w: voucher date is required", apperrors.ErrValidation)
	}
	if _, err := repos.VoucherType.FindVoucherTypeByID(ctx, businessID, req.VoucherTypeID); err != nil {
		return domain.Voucher{}, fmt.Errorf("voucher type %d: %w", req.VoucherTypeID, err)
	}
	currency, err := resolveCurrency(ctx, repos.Currency, req.CurrencyCode)
	if err != nil {
		return domain.Voucher{}, err
	}
	date := domain.DateOnly(req.Date.Time)
	if err := rejectLockedDate(ctx, repos.Year, businessID, date); err != nil {
		return domain.Voucher{}, err
	}
	return domain.Voucher{
		BusinessID:    businessID,
		VoucherTypeID: req.VoucherTypeID,
		Date:          date,
		Narration:     req.Narration,
		Status:        domain.VoucherDraft,
		CurrencyCode:  currency.Code,
		Entries:       dto.ToVoucherEntries(req.Lines, date),
	}, nil
}

func (s *voucherService) CreateDraft(ctx context.Context, businessID int64, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error) {
	v, err := s.draftFromRequest(ctx, s.repos, businessID, req)
	if err != nil {
		s.LogFailure(ctx, err, "Draft voucher rejected", slog.Int64("business_id", businessID))
		return nil, err
	}
	v.AuditFields = newAuditFields(userID, s.now())
	id, err := s.repos.Voucher.SaveVoucher(ctx, v)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to save draft voucher", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to create draft voucher: %w", err)
	}
	v.ID = id
	for i := range v.Entries {
		v.Entries[i].VoucherID = id
	}
	s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityVoucher, id), nil, v, userID)
	s.LogInfo(ctx, "Draft voucher created", slog.Int64("business_id", businessID), slog.Int64("voucher_id", id))
	return &v, nil
}

// lockVoucher loads a voucher for update and checks it is in the expected state.
func lockVoucher(ctx context.Context, repo portsrepo.VoucherRepositoryFacade, businessID, voucherID int64, want domain.VoucherStatus) (*domain.Voucher, error) {
	v, err := repo.FindVoucherByIDForUpdate(ctx, businessID, voucherID)
	if err != nil {
		return nil, err
	}
	if v.Status != want {
		if want == domain.VoucherPosted {
			return nil, fmt.Errorf("%w: voucher %d is %s", apperrors.ErrNotPosted, voucherID, v.Status)
		}
		return nil, fmt.Errorf("%w: voucher %d is %s", apperrors.ErrNotDraft, voucherID, v.Status)
	}
	return v, nil
}

func (s *voucherService) UpdateDraft(ctx context.Context, businessID, voucherID int64, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	var before, after domain.Voucher
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		current, err := lockVoucher(ctx, repos.Voucher, businessID, voucherID, domain.VoucherDraft)
		if err != nil {
			return err
		}
		if err := rejectLockedDate(ctx, repos.Year, businessID, current.Date); err != nil {
			return err
		}
		next, err := s.draftFromRequest(ctx, repos, businessID, req)
		if err != nil {
			return err
		}
		next.ID = current.ID
		next.DuplicatedFromID = current.DuplicatedFromID
		next.AuditFields = current.AuditFields
		touch(&next.AuditFields, userID, s.now())
		for i := range next.Entries {
			next.Entries[i].VoucherID = current.ID
		}
		before, after = *current, next
		return repos.Voucher.ReplaceDraft(ctx, next)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to update draft voucher", slog.Int64("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to update voucher %d: %w", voucherID, err)
	}
	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityVoucher, voucherID), before, after, userID)
	return &after, nil
}

func (s *voucherService) DeleteDraft(ctx context.Context, businessID, voucherID int64, userID string) error {
	var deleted domain.Voucher
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		current, err := lockVoucher(ctx, repos.Voucher, businessID, voucherID, domain.VoucherDraft)
		if err != nil {
			return err
		}
		if err := rejectLockedDate(ctx, repos.Year, businessID, current.Date); err != nil {
			return err
		}
		deleted = *current
		return repos.Voucher.DeleteVoucher(ctx, businessID, voucherID)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete draft voucher", slog.Int64("voucher_id", voucherID))
		return fmt.Errorf("failed to delete voucher %d: %w", voucherID, err)
	}
	s.record(ctx, &businessID, domain.ActionDelete, domain.RefOf(domain.EntityVoucher, voucherID), deleted, nil, userID)
	s.LogInfo(ctx, "Draft voucher deleted", slog.Int64("voucher_id", voucherID))
	return nil
}

// lockLedgers locks the ledger accounts referenced by lines and resolves
// each one's nature.
func lockLedgers(ctx context.Context, repos portsrepo.TxRepositories, businessID int64, lines []domain.JournalEntry) (map[int64]domain.LedgerAccount, map[int64]domain.Nature, error) {
	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if !seen[l.LedgerAccountID] {
			seen[l.LedgerAccountID] = true
			ids = append(ids, l.LedgerAccountID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ledgers, err := repos.Ledger.FindLedgerAccountsForUpdate(ctx, businessID, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		if _, ok := ledgers[id]; !ok {
			return nil, nil, fmt.Errorf("%w: ledger account %d", apperrors.ErrNotFound, id)
		}
	}
	groups, err := repos.Group.ListGroups(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}
	tree, err := domain.NewGroupTree(groups)
	if err != nil {
		return nil, nil, err
	}
	natures, err := accounting.LedgerNatures(ledgers, tree)
	if err != nil {
		return nil, nil, err
	}
	return ledgers, natures, nil
}

func (s *voucherService) PostVoucher(ctx context.Context, businessID, voucherID int64, userID string) (*domain.Voucher, error) {
	var posted domain.Voucher
	var deltas map[int64]decimal.Decimal
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		v, err := lockVoucher(ctx, repos.Voucher, businessID, voucherID, domain.VoucherDraft)
		if err != nil {
			return err
		}
		settings, err := loadSettings(ctx, repos.Settings, s.defaults, businessID)
		if err != nil {
			return err
		}

		year, err := postableYear(ctx, repos.Year, businessID, v.Date)
		if err != nil {
			return err
		}

		lines := v.OriginalEntries()
		if err := domain.ValidateLines(lines, settings.AmountPrecision); err != nil {
			return err
		}
		ledgers, natures, err := lockLedgers(ctx, repos, businessID, lines)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if !ledgers[l.LedgerAccountID].Postable() {
				return fmt.Errorf("%w: line %d uses ledger account %d", apperrors.ErrInactiveLedger, l.LineNo, l.LedgerAccountID)
			}
		}

		if err := domain.CheckBalanced(lines); err != nil {
			return err
		}

		vt, err := repos.VoucherType.FindVoucherTypeByID(ctx, businessID, v.VoucherTypeID)
		if err != nil {
			return fmt.Errorf("voucher type %d: %w", v.VoucherTypeID, err)
		}
		if err := vt.CheckLines(lines, ledgers); err != nil {
			return err
		}

		currency, err := findCurrency(ctx, repos.Currency, v.CurrencyCode)
		if err != nil {
			return err
		}
		rate := currency.Rate()
		domain.AllocateBase(lines, rate, settings.AmountPrecision)

		seq, err := repos.Voucher.NextSequenceNumber(ctx, businessID, vt.ID, year.ID, vt.StartingNumber)
		if err != nil {
			return err
		}

		deltas, err = accounting.BalanceDeltas(lines, natures)
		if err != nil {
			return err
		}
		now := s.now()
		if err := repos.Ledger.ApplyBalanceDeltas(ctx, businessID, deltas, userID, now); err != nil {
			return err
		}

		v.Status = domain.VoucherPosted
		v.ReferenceNumber = vt.FormatReference(seq)
		v.SequenceNumber = &seq
		v.FinancialYearID = &year.ID
		v.ExchangeRate = rate
		v.PostedAt = &now
		v.PostedBy = ptr(userID)
		v.Entries = lines
		touch(&v.AuditFields, userID, now)
		if err := repos.Voucher.MarkPosted(ctx, *v); err != nil {
			return err
		}
		posted = *v
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to post voucher", slog.Int64("business_id", businessID), slog.Int64("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to post voucher %d: %w", voucherID, err)
	}

	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityVoucher, voucherID),
		map[string]any{"status": domain.VoucherDraft},
		map[string]any{"status": posted.Status, "referenceNumber": posted.ReferenceNumber, "financialYearID": posted.FinancialYearID, "balanceDeltas": deltas},
		userID)
	s.LogInfo(ctx, "Voucher posted", slog.Int64("business_id", businessID), slog.Int64("voucher_id", voucherID),
		slog.String("reference_number", posted.ReferenceNumber))
	return &posted, nil
}

func (s *voucherService) VoidVoucher(ctx context.Context, businessID, voucherID int64, reason string, userID string) (*domain.Voucher, error) {
	var voided domain.Voucher
	var deltas map[int64]decimal.Decimal
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		v, err := lockVoucher(ctx, repos.Voucher, businessID, voucherID, domain.VoucherPosted)
		if err != nil {
			return err
		}
		settings, err := loadSettings(ctx, repos.Settings, s.defaults, businessID)
		if err != nil {
			return err
		}
		now := s.now()

		// The year the voucher was posted to must still be open.
		if _, err := postableYear(ctx, repos.Year, businessID, v.Date); err != nil {
			return err
		}
		reversalDate := v.Date
		if settings.VoidDating == domain.VoidOnVoidDate {
			reversalDate = domain.DateOnly(now)
			if !reversalDate.Equal(domain.DateOnly(v.Date)) {
				if _, err := postableYear(ctx, repos.Year, businessID, reversalDate); err != nil {
					return err
				}
			}
		}

		reversals := v.ReversalEntries(reversalDate)
		_, natures, err := lockLedgers(ctx, repos, businessID, reversals)
		if err != nil {
			return err
		}
		deltas, err = accounting.BalanceDeltas(reversals, natures)
		if err != nil {
			return err
		}
		if err := repos.Ledger.ApplyBalanceDeltas(ctx, businessID, deltas, userID, now); err != nil {
			return err
		}

		v.Status = domain.VoucherVoid
		v.VoidedAt = &now
		v.VoidedBy = ptr(userID)
		v.VoidReason = reason
		touch(&v.AuditFields, userID, now)
		if err := repos.Voucher.MarkVoid(ctx, *v, reversals); err != nil {
			return err
		}
		v.Entries = append(v.Entries, reversals...)
		voided = *v
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to void voucher", slog.Int64("business_id", businessID), slog.Int64("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to void voucher %d: %w", voucherID, err)
	}

	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityVoucher, voucherID),
		map[string]any{"status": domain.VoucherPosted},
		map[string]any{"status": voided.Status, "voidReason": voided.VoidReason, "balanceDeltas": deltas},
		userID)
	s.LogInfo(ctx, "Voucher voided", slog.Int64("business_id", businessID), slog.Int64("voucher_id", voucherID))
	return &voided, nil
}

func (s *voucherService) DuplicateVoucher(ctx context.Context, businessID, voucherID int64, userID string) (*domain.Voucher, error) {
	src, err := s.repos.Voucher.FindVoucherByID(ctx, businessID, voucherID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find voucher to duplicate", slog.Int64("voucher_id", voucherID))
		return nil, err
	}
	if err := rejectLockedDate(ctx, s.repos.Year, businessID, src.Date); err != nil {
		return nil, err
	}
	dup := src.Duplicate()
	dup.AuditFields = newAuditFields(userID, s.now())
	id, err := s.repos.Voucher.SaveVoucher(ctx, dup)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to save duplicated voucher", slog.Int64("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to duplicate voucher %d: %w", voucherID, err)
	}
	dup.ID = id
	for i := range dup.Entries {
		dup.Entries[i].VoucherID = id
	}
	s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityVoucher, id), nil, dup, userID)
	s.LogInfo(ctx, "Voucher duplicated", slog.Int64("source_voucher_id", voucherID), slog.Int64("voucher_id", id))
	return &dup, nil
}
