package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

type chartService struct {
	BaseService
	repos    portsrepo.TxRepositories
	uow      portsrepo.UnitOfWork
	defaults SettingsDefaults
}

// NewChartService creates the chart of accounts service.
func NewChartService(repos portsrepo.RepositoryProvider, defaults SettingsDefaults, audit portssvc.AuditRecorder) portssvc.ChartSvcFacade {
	return &chartService{
		BaseService: BaseService{Audit: audit},
		repos:       repos.TxRepositories,
		uow:         repos.UnitOfWork,
		defaults:    defaults,
	}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

func lockedTree(ctx context.Context, repo portsrepo.AccountGroupRepositoryFacade, businessID int64) (*domain.GroupTree, error) {
	groups, err := repo.ListGroupsForUpdate(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return domain.NewGroupTree(groups)
}

func (s *chartService) SeedDefaultChart(ctx context.Context, businessID int64, userID string) ([]domain.AccountGroup, error) {
	now := s.now()
	var createdGroups []domain.AccountGroup
	var createdTypes []domain.VoucherType

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		tree, err := lockedTree(ctx, repos.Group, businessID)
		if err != nil {
			return err
		}
		ids := make(map[string]int64)
		for i, tmpl := range domain.DefaultChart() {
			if existing, ok := tree.BySystemKey(tmpl.Key); ok {
				ids[tmpl.Key] = existing.ID
				continue
			}
			group := domain.AccountGroup{
				BusinessID:         businessID,
				Name:               tmpl.Name,
				Nature:             tmpl.Nature,
				AffectsGrossProfit: tmpl.AffectsGrossProfit,
				Sequence:           (i + 1) * 10,
				IsSystem:           true,
				SystemKey:          tmpl.Key,
				AuditFields:        newAuditFields(userID, now),
			}
			if tmpl.ParentKey != "" {
				parentID := ids[tmpl.ParentKey]
				group.ParentID = &parentID
			}
			id, err := repos.Group.SaveGroup(ctx, group)
			if err != nil {
				return fmt.Errorf("failed to seed group %s: %w", tmpl.Key, err)
			}
			group.ID = id
			ids[tmpl.Key] = id
			createdGroups = append(createdGroups, group)
		}

		existingTypes, err := repos.VoucherType.ListVoucherTypes(ctx, businessID)
		if err != nil {
			return err
		}
		seeded := make(map[domain.VoucherNature]bool)
		for _, vt := range existingTypes {
			if vt.IsSystem {
				seeded[vt.Nature] = true
			}
		}
		for _, vt := range domain.DefaultVoucherTypes() {
			if seeded[vt.Nature] {
				continue
			}
			vt.BusinessID = businessID
			vt.AuditFields = newAuditFields(userID, now)
			id, err := repos.VoucherType.SaveVoucherType(ctx, vt)
			if err != nil {
				return fmt.Errorf("failed to seed voucher type %s: %w", vt.Name, err)
			}
			vt.ID = id
			createdTypes = append(createdTypes, vt)
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to seed default chart", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to seed chart of accounts: %w", err)
	}

	for _, g := range createdGroups {
		s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityAccountGroup, g.ID), nil, g, userID)
	}
	for _, vt := range createdTypes {
		s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityVoucherType, vt.ID), nil, vt, userID)
	}
	s.LogInfo(ctx, "Default chart seeded", slog.Int64("business_id", businessID),
		slog.Int("groups_created", len(createdGroups)), slog.Int("voucher_types_created", len(createdTypes)))

	groups, err := s.repos.Group.ListGroups(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *chartService) CreateGroup(ctx context.Context, businessID int64, req dto.CreateAccountGroupRequest, userID string) (*domain.AccountGroup, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	group := domain.AccountGroup{
		BusinessID:         businessID,
		ParentID:           req.ParentID,
		Name:               req.Name,
		Nature:             domain.Nature(req.Nature),
		AffectsGrossProfit: req.AffectsGrossProfit,
		Sequence:           req.Sequence,
		AuditFields:        newAuditFields(userID, s.now()),
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		settings, err := loadSettings(ctx, repos.Settings, s.defaults, businessID)
		if err != nil {
			return err
		}
		tree, err := lockedTree(ctx, repos.Group, businessID)
		if err != nil {
			return err
		}
		if group.ParentID == nil {
			if !group.Nature.Valid() {
				return fmt.Errorf("%w: a root group needs a nature", apperrors.ErrValidation)
			}
		} else {
			parent, ok := tree.Get(*group.ParentID)
			if !ok {
				return fmt.Errorf("%w: parent group %d", apperrors.ErrNotFound, *group.ParentID)
			}
			if group.Nature == "" {
				group.Nature = parent.Nature
			}
			if err := domain.ValidateChildNature(parent, group.Nature, settings.StrictGroupNature); err != nil {
				return err
			}
		}
		id, err := repos.Group.SaveGroup(ctx, group)
		if err != nil {
			return err
		}
		group.ID = id
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create account group", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to create account group: %w", err)
	}

	s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityAccountGroup, group.ID), nil, group, userID)
	s.LogInfo(ctx, "Account group created", slog.Int64("business_id", businessID), slog.Int64("group_id", group.ID))
	return &group, nil
}

func (s *chartService) UpdateGroup(ctx context.Context, businessID, groupID int64, req dto.UpdateAccountGroupRequest, userID string) (*domain.AccountGroup, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var before, updated domain.AccountGroup

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		settings, err := loadSettings(ctx, repos.Settings, s.defaults, businessID)
		if err != nil {
			return err
		}
		tree, err := lockedTree(ctx, repos.Group, businessID)
		if err != nil {
			return err
		}
		current, ok := tree.Get(groupID)
		if !ok {
			return fmt.Errorf("%w: account group %d", apperrors.ErrNotFound, groupID)
		}
		before, updated = current, current

		if req.Name != nil {
			updated.Name = *req.Name
		}
		if req.AffectsGrossProfit != nil {
			updated.AffectsGrossProfit = *req.AffectsGrossProfit
		}
		if req.Sequence != nil {
			updated.Sequence = *req.Sequence
		}
		switch {
		case req.MoveToRoot:
			updated.ParentID = nil
		case req.ParentID != nil:
			updated.ParentID = req.ParentID
		}
		if req.Nature != nil {
			updated.Nature = domain.Nature(*req.Nature)
		}

		moved := !sameParent(before.ParentID, updated.ParentID)
		natureChanged := before.Nature != updated.Nature
		if before.IsSystem && (moved || natureChanged) {
			return fmt.Errorf("%w: group %d", apperrors.ErrProtectedGroup, groupID)
		}
		if moved {
			if err := tree.ValidateParent(groupID, updated.ParentID); err != nil {
				return err
			}
		}
		if natureChanged {
			children, ledgers, err := repos.Group.CountGroupDependents(ctx, businessID, groupID)
			if err != nil {
				return err
			}
			if ledgers > 0 {
				return fmt.Errorf("%w: nature of group %d cannot change while it holds ledger accounts", apperrors.ErrValidation, groupID)
			}
			if settings.StrictGroupNature && children > 0 {
				return fmt.Errorf("%w: nature of group %d cannot change while it has child groups", apperrors.ErrInvalidHierarchy, groupID)
			}
		}
		if updated.ParentID != nil && (moved || natureChanged) {
			parent, _ := tree.Get(*updated.ParentID)
			if err := domain.ValidateChildNature(parent, updated.Nature, settings.StrictGroupNature); err != nil {
				return err
			}
		} else if !updated.Nature.Valid() {
			return fmt.Errorf("%w: unknown nature %q", apperrors.ErrValidation, updated.Nature)
		}

		touch(&updated.AuditFields, userID, s.now())
		return repos.Group.UpdateGroup(ctx, updated)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to update account group", slog.Int64("business_id", businessID), slog.Int64("group_id", groupID))
		return nil, fmt.Errorf("failed to update account group %d: %w", groupID, err)
	}

	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityAccountGroup, groupID), before, updated, userID)
	return &updated, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *chartService) DeleteGroup(ctx context.Context, businessID, groupID int64, userID string) error {
	var deleted domain.AccountGroup
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		tree, err := lockedTree(ctx, repos.Group, businessID)
		if err != nil {
			return err
		}
		group, ok := tree.Get(groupID)
		if !ok {
			return fmt.Errorf("%w: account group %d", apperrors.ErrNotFound, groupID)
		}
		if group.IsSystem {
			return fmt.Errorf("%w: group %d", apperrors.ErrProtectedGroup, groupID)
		}
		children, ledgers, err := repos.Group.CountGroupDependents(ctx, businessID, groupID)
		if err != nil {
			return err
		}
		if children > 0 || ledgers > 0 {
			return fmt.Errorf("%w: group %d has %d child groups and %d ledger accounts", apperrors.ErrGroupNotEmpty, groupID, children, ledgers)
		}
		deleted = group
		return repos.Group.DeleteGroup(ctx, businessID, groupID)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete account group", slog.Int64("business_id", businessID), slog.Int64("group_id", groupID))
		return fmt.Errorf("failed to delete account group %d: %w", groupID, err)
	}
	s.record(ctx, &businessID, domain.ActionDelete, domain.RefOf(domain.EntityAccountGroup, groupID), deleted, nil, userID)
	s.LogInfo(ctx, "Account group deleted", slog.Int64("business_id", businessID), slog.Int64("group_id", groupID))
	return nil
}

func (s *chartService) GetGroup(ctx context.Context, businessID, groupID int64) (*domain.AccountGroup, error) {
	group, err := s.repos.Group.FindGroupByID(ctx, businessID, groupID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get account group", slog.Int64("group_id", groupID))
		return nil, err
	}
	return group, nil
}

func (s *chartService) GetGroupTree(ctx context.Context, businessID int64) (*domain.GroupTree, error) {
	groups, err := s.repos.Group.ListGroups(ctx, businessID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account groups", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to list account groups: %w", err)
	}
	return domain.NewGroupTree(groups)
}

func (s *chartService) CreateLedgerAccount(ctx context.Context, businessID int64, req dto.CreateLedgerAccountRequest, userID string) (*domain.LedgerAccount, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.repos.Settings, s.defaults, businessID)
	if err != nil {
		return nil, err
	}
	if err := checkPrecision(req.OpeningBalance, settings.AmountPrecision); err != nil {
		return nil, err
	}
	if _, err := s.repos.Group.FindGroupByID(ctx, businessID, req.GroupID); err != nil {
		s.LogFailure(ctx, err, "Ledger account group lookup failed", slog.Int64("group_id", req.GroupID))
		return nil, fmt.Errorf("account group %d: %w", req.GroupID, err)
	}

	ledger := domain.LedgerAccount{
		BusinessID:     businessID,
		GroupID:        req.GroupID,
		Name:           req.Name,
		Code:           req.Code,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		IsBankAccount:  req.IsBankAccount,
		IsCashAccount:  req.IsCashAccount,
		IsActive:       true,
		AuditFields:    newAuditFields(userID, s.now()),
	}
	id, err := s.repos.Ledger.SaveLedgerAccount(ctx, ledger)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to save ledger account", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to create ledger account: %w", err)
	}
	ledger.ID = id

	s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityLedgerAccount, id), nil, ledger, userID)
	s.LogInfo(ctx, "Ledger account created", slog.Int64("business_id", businessID), slog.Int64("ledger_account_id", id))
	return &ledger, nil
}

func checkPrecision(amount decimal.Decimal, precision int32) error {
	if !amount.Equal(amount.Truncate(precision)) {
		return fmt.Errorf("%w: %s exceeds %d places", apperrors.ErrPrecisionExceeded, amount, precision)
	}
	return nil
}

// mutateLedger locks one ledger account, applies fn and stores the result.
func (s *chartService) mutateLedger(ctx context.Context, businessID, ledgerID int64, userID string, fn func(ctx context.Context, repos portsrepo.TxRepositories, l *domain.LedgerAccount) error) (before, after domain.LedgerAccount, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		locked, err := repos.Ledger.FindLedgerAccountsForUpdate(ctx, businessID, []int64{ledgerID})
		if err != nil {
			return err
		}
		current, ok := locked[ledgerID]
		if !ok {
			return fmt.Errorf("%w: ledger account %d", apperrors.ErrNotFound, ledgerID)
		}
		before, after = current, current
		if err := fn(ctx, repos, &after); err != nil {
			return err
		}
		touch(&after.AuditFields, userID, s.now())
		return repos.Ledger.UpdateLedgerAccount(ctx, after)
	})
	return before, after, err
}

func (s *chartService) UpdateLedgerAccount(ctx context.Context, businessID, ledgerID int64, req dto.UpdateLedgerAccountRequest, userID string) (*domain.LedgerAccount, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	before, after, err := s.mutateLedger(ctx, businessID, ledgerID, userID, func(ctx context.Context, repos portsrepo.TxRepositories, l *domain.LedgerAccount) error {
		if l.IsDeleted() {
			return fmt.Errorf("%w: ledger account %d is deleted", apperrors.ErrInactiveLedger, l.ID)
		}
		if req.Name != nil {
			l.Name = *req.Name
		}
		if req.Code != nil {
			l.Code = *req.Code
		}
		if req.IsBankAccount != nil {
			l.IsBankAccount = *req.IsBankAccount
		}
		if req.IsCashAccount != nil {
			l.IsCashAccount = *req.IsCashAccount
		}
		if req.IsActive != nil {
			l.IsActive = *req.IsActive
		}
		if req.GroupID != nil && *req.GroupID != l.GroupID {
			from, err := repos.Group.FindGroupByID(ctx, businessID, l.GroupID)
			if err != nil {
				return err
			}
			to, err := repos.Group.FindGroupByID(ctx, businessID, *req.GroupID)
			if err != nil {
				return fmt.Errorf("account group %d: %w", *req.GroupID, err)
			}
			// Balances are signed in the group's nature.
			l.OpeningBalance = domain.ConvertSign(l.OpeningBalance, from.Nature, to.Nature)
			l.CurrentBalance = domain.ConvertSign(l.CurrentBalance, from.Nature, to.Nature)
			l.GroupID = to.ID
		}
		if req.OpeningBalance != nil {
			settings, err := loadSettings(ctx, repos.Settings, s.defaults, businessID)
			if err != nil {
				return err
			}
			if err := checkPrecision(*req.OpeningBalance, settings.AmountPrecision); err != nil {
				return err
			}
			l.CurrentBalance = l.CurrentBalance.Add(req.OpeningBalance.Sub(l.OpeningBalance))
			l.OpeningBalance = *req.OpeningBalance
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to update ledger account", slog.Int64("ledger_account_id", ledgerID))
		return nil, fmt.Errorf("failed to update ledger account %d: %w", ledgerID, err)
	}
	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityLedgerAccount, ledgerID), before, after, userID)
	return &after, nil
}

func (s *chartService) DeleteLedgerAccount(ctx context.Context, businessID, ledgerID int64, userID string) error {
	before, _, err := s.mutateLedger(ctx, businessID, ledgerID, userID, func(_ context.Context, _ portsrepo.TxRepositories, l *domain.LedgerAccount) error {
		if l.IsDeleted() {
			return fmt.Errorf("%w: ledger account %d", apperrors.ErrNotFound, l.ID)
		}
		now := s.now()
		l.DeletedAt = &now
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete ledger account", slog.Int64("ledger_account_id", ledgerID))
		return fmt.Errorf("failed to delete ledger account %d: %w", ledgerID, err)
	}
	s.record(ctx, &businessID, domain.ActionDelete, domain.RefOf(domain.EntityLedgerAccount, ledgerID), before, nil, userID)
	s.LogInfo(ctx, "Ledger account deleted", slog.Int64("ledger_account_id", ledgerID))
	return nil
}

func (s *chartService) RestoreLedgerAccount(ctx context.Context, businessID, ledgerID int64, userID string) (*domain.LedgerAccount, error) {
	_, after, err := s.mutateLedger(ctx, businessID, ledgerID, userID, func(_ context.Context, _ portsrepo.TxRepositories, l *domain.LedgerAccount) error {
		if !l.IsDeleted() {
			return fmt.Errorf("%w: ledger account %d is not deleted", apperrors.ErrConflict, l.ID)
		}
		l.DeletedAt = nil
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to restore ledger account", slog.Int64("ledger_account_id", ledgerID))
		return nil, fmt.Errorf("failed to restore ledger account %d: %w", ledgerID, err)
	}
	s.record(ctx, &businessID, domain.ActionRestore, domain.RefOf(domain.EntityLedgerAccount, ledgerID), nil, after, userID)
	s.LogInfo(ctx, "Ledger account restored", slog.Int64("ledger_account_id", ledgerID))
	return &after, nil
}

func (s *chartService) GetLedgerAccount(ctx context.Context, businessID, ledgerID int64) (*domain.LedgerAccount, error) {
	ledger, err := s.repos.Ledger.FindLedgerAccountByID(ctx, businessID, ledgerID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get ledger account", slog.Int64("ledger_account_id", ledgerID))
		return nil, err
	}
	return ledger, nil
}

func (s *chartService) ListLedgerAccounts(ctx context.Context, businessID int64, includeDeleted bool) ([]domain.LedgerAccount, error) {
	ledgers, err := s.repos.Ledger.ListLedgerAccounts(ctx, businessID, includeDeleted)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger accounts", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to list ledger accounts: %w", err)
	}
	if ledgers == nil {
		return []domain.LedgerAccount{}, nil
	}
	return ledgers, nil
}

func (s *chartService) BalanceAsOf(ctx context.Context, businessID, ledgerID int64, date time.Time) (decimal.Decimal, error) {
	ledger, err := s.repos.Ledger.FindLedgerAccountByID(ctx, businessID, ledgerID)
	if err != nil {
		s.LogFailure(ctx, err, "Balance ledger lookup failed", slog.Int64("ledger_account_id", ledgerID))
		return decimal.Zero, err
	}
	group, err := s.repos.Group.FindGroupByID(ctx, businessID, ledger.GroupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: group %d of ledger account %d", apperrors.ErrInternal, ledger.GroupID, ledgerID)
		}
		return decimal.Zero, err
	}
	movements, err := s.repos.Reporting.SumLines(ctx, businessID, nil, domain.DateOnly(date), &ledgerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger lines", slog.Int64("ledger_account_id", ledgerID))
		return decimal.Zero, fmt.Errorf("failed to compute balance of ledger account %d: %w", ledgerID, err)
	}
	balance := ledger.OpeningBalance
	for _, m := range movements {
		balance = balance.Add(m.Net(group.Nature))
	}
	return balance, nil
}
