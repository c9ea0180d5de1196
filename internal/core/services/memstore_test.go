package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory implementation of every repository. WithinTx
// serializes units of work and restores a snapshot when fn fails, which is
// enough to observe atomicity and lock ordering from the service side.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data memData
	next int64

	// failApply makes ApplyBalanceDeltas fail once when set.
	failApply error
	// snapshots counts WithinSnapshot calls.
	snapshots int
}

type seqKey struct{ business, vtype, year int64 }

type memData struct {
	currencies   map[string]domain.Currency
	groups       map[int64]domain.AccountGroup
	ledgers      map[int64]domain.LedgerAccount
	years        map[int64]domain.FinancialYear
	settings     map[int64]domain.BusinessSettings
	voucherTypes map[int64]domain.VoucherType
	vouchers     map[int64]domain.Voucher
	sequences    map[seqKey]int64
	ratios       map[int64]domain.FinancialRatio
	audit        []domain.AuditLogEntry
}

func newMemStore() *memStore {
	return &memStore{data: memData{
		currencies:   map[string]domain.Currency{},
		groups:       map[int64]domain.AccountGroup{},
		ledgers:      map[int64]domain.LedgerAccount{},
		years:        map[int64]domain.FinancialYear{},
		settings:     map[int64]domain.BusinessSettings{},
		voucherTypes: map[int64]domain.VoucherType{},
		vouchers:     map[int64]domain.Voucher{},
		sequences:    map[seqKey]int64{},
		ratios:       map[int64]domain.FinancialRatio{},
	}}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d memData) clone() memData {
	vouchers := make(map[int64]domain.Voucher, len(d.vouchers))
	for id, v := range d.vouchers {
		v.Entries = append([]domain.JournalEntry(nil), v.Entries...)
		vouchers[id] = v
	}
	return memData{
		currencies:   cloneMap(d.currencies),
		groups:       cloneMap(d.groups),
		ledgers:      cloneMap(d.ledgers),
		years:        cloneMap(d.years),
		settings:     cloneMap(d.settings),
		voucherTypes: cloneMap(d.voucherTypes),
		vouchers:     vouchers,
		sequences:    cloneMap(d.sequences),
		ratios:       cloneMap(d.ratios),
		audit:        append([]domain.AuditLogEntry(nil), d.audit...),
	}
}

func (s *memStore) id() int64 {
	s.next++
	return s.next
}

func (s *memStore) txRepos() portsrepo.TxRepositories {
	return portsrepo.TxRepositories{
		Currency:    s,
		Group:       s,
		Ledger:      s,
		Year:        s,
		Settings:    s,
		VoucherType: s,
		Voucher:     s,
		Ratio:       s,
		Reporting:   s,
	}
}

func (s *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxRepositories: s.txRepos(),
		UnitOfWork:     s,
		AuditLog:       s,
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.txRepos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// WithinSnapshot holds txMu like WithinTx, so no unit of work commits
// while fn reads.
func (s *memStore) WithinSnapshot(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	s.mu.Lock()
	s.snapshots++
	s.mu.Unlock()
	return s.WithinTx(ctx, fn)
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%w: %s %v", apperrors.ErrNotFound, kind, id)
}

// currencies

func (s *memStore) FindCurrencyByCode(_ context.Context, code string) (*domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.currencies[code]
	if !ok {
		return nil, notFound("currency", code)
	}
	return &c, nil
}

func (s *memStore) FindDefaultCurrency(_ context.Context) (*domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.data.currencies {
		if c.IsDefault {
			return &c, nil
		}
	}
	return nil, notFound("default currency", "")
}

func (s *memStore) ListCurrencies(_ context.Context) ([]domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Currency, 0, len(s.data.currencies))
	for _, c := range s.data.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *memStore) ListCurrenciesForUpdate(ctx context.Context) ([]domain.Currency, error) {
	return s.ListCurrencies(ctx)
}

func (s *memStore) SaveCurrency(_ context.Context, c domain.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.currencies[c.Code]; ok {
		return fmt.Errorf("%w: currency %s", apperrors.ErrDuplicate, c.Code)
	}
	s.data.currencies[c.Code] = c
	return nil
}

func (s *memStore) UpdateCurrency(_ context.Context, c domain.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.currencies[c.Code]; !ok {
		return notFound("currency", c.Code)
	}
	s.data.currencies[c.Code] = c
	return nil
}

func (s *memStore) DeleteCurrency(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.currencies[code]; !ok {
		return notFound("currency", code)
	}
	delete(s.data.currencies, code)
	return nil
}

// account groups

func (s *memStore) FindGroupByID(_ context.Context, businessID, groupID int64) (*domain.AccountGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.data.groups[groupID]
	if !ok || g.BusinessID != businessID {
		return nil, notFound("group", groupID)
	}
	return &g, nil
}

func (s *memStore) ListGroups(_ context.Context, businessID int64) ([]domain.AccountGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AccountGroup
	for _, g := range s.data.groups {
		if g.BusinessID == businessID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListGroupsForUpdate(ctx context.Context, businessID int64) ([]domain.AccountGroup, error) {
	return s.ListGroups(ctx, businessID)
}

func (s *memStore) CountGroupDependents(_ context.Context, businessID, groupID int64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	children, ledgers := 0, 0
	for _, g := range s.data.groups {
		if g.BusinessID == businessID && g.ParentID != nil && *g.ParentID == groupID {
			children++
		}
	}
	for _, l := range s.data.ledgers {
		if l.BusinessID == businessID && l.GroupID == groupID {
			ledgers++
		}
	}
	return children, ledgers, nil
}

func (s *memStore) SaveGroup(_ context.Context, g domain.AccountGroup) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id()
	s.data.groups[g.ID] = g
	return g.ID, nil
}

func (s *memStore) UpdateGroup(_ context.Context, g domain.AccountGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.groups[g.ID]; !ok {
		return notFound("group", g.ID)
	}
	s.data.groups[g.ID] = g
	return nil
}

func (s *memStore) DeleteGroup(_ context.Context, businessID, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.data.groups[groupID]; !ok || g.BusinessID != businessID {
		return notFound("group", groupID)
	}
	delete(s.data.groups, groupID)
	return nil
}

// ledger accounts

func (s *memStore) FindLedgerAccountByID(_ context.Context, businessID, ledgerID int64) (*domain.LedgerAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.ledgers[ledgerID]
	if !ok || l.BusinessID != businessID {
		return nil, notFound("ledger account", ledgerID)
	}
	return &l, nil
}

func (s *memStore) ListLedgerAccounts(_ context.Context, businessID int64, includeDeleted bool) ([]domain.LedgerAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerAccount
	for _, l := range s.data.ledgers {
		if l.BusinessID == businessID && (includeDeleted || !l.IsDeleted()) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SaveLedgerAccount(_ context.Context, l domain.LedgerAccount) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.id()
	s.data.ledgers[l.ID] = l
	return l.ID, nil
}

func (s *memStore) UpdateLedgerAccount(_ context.Context, l domain.LedgerAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.ledgers[l.ID]; !ok {
		return notFound("ledger account", l.ID)
	}
	s.data.ledgers[l.ID] = l
	return nil
}

func (s *memStore) FindLedgerAccountsForUpdate(_ context.Context, businessID int64, ids []int64) (map[int64]domain.LedgerAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]domain.LedgerAccount, len(ids))
	for _, id := range ids {
		if l, ok := s.data.ledgers[id]; ok && l.BusinessID == businessID {
			out[id] = l
		}
	}
	return out, nil
}

func (s *memStore) ApplyBalanceDeltas(_ context.Context, businessID int64, deltas map[int64]decimal.Decimal, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failApply != nil {
		err := s.failApply
		s.failApply = nil
		return err
	}
	for id, delta := range deltas {
		l, ok := s.data.ledgers[id]
		if !ok || l.BusinessID != businessID {
			return notFound("ledger account", id)
		}
		l.CurrentBalance = l.CurrentBalance.Add(delta)
		l.LastUpdatedAt = now
		l.LastUpdatedBy = userID
		s.data.ledgers[id] = l
	}
	return nil
}

// financial years

func (s *memStore) SaveFinancialYear(_ context.Context, y domain.FinancialYear) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y.ID = s.id()
	s.data.years[y.ID] = y
	return y.ID, nil
}

func (s *memStore) FindFinancialYearByID(_ context.Context, businessID, yearID int64) (*domain.FinancialYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, ok := s.data.years[yearID]
	if !ok || y.BusinessID != businessID {
		return nil, notFound("financial year", yearID)
	}
	return &y, nil
}

func (s *memStore) FindFinancialYearByIDForUpdate(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error) {
	return s.FindFinancialYearByID(ctx, businessID, yearID)
}

func (s *memStore) FindFinancialYearForDate(_ context.Context, businessID int64, date time.Time) (*domain.FinancialYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, y := range s.data.years {
		if y.BusinessID == businessID && y.Contains(date) {
			return &y, nil
		}
	}
	return nil, notFound("financial year for", date.Format(time.DateOnly))
}

func (s *memStore) FindOverlappingYears(_ context.Context, businessID int64, start, end time.Time) ([]domain.FinancialYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.FinancialYear
	for _, y := range s.data.years {
		if y.BusinessID == businessID && y.Overlaps(start, end) {
			out = append(out, y)
		}
	}
	return out, nil
}

func (s *memStore) ListFinancialYears(_ context.Context, businessID int64) ([]domain.FinancialYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.FinancialYear
	for _, y := range s.data.years {
		if y.BusinessID == businessID {
			out = append(out, y)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *memStore) UpdateFinancialYear(_ context.Context, y domain.FinancialYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.years[y.ID]; !ok {
		return notFound("financial year", y.ID)
	}
	s.data.years[y.ID] = y
	return nil
}

func (s *memStore) ClearCurrentYear(_ context.Context, businessID int64, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, y := range s.data.years {
		if y.BusinessID == businessID && y.IsCurrent {
			y.IsCurrent = false
			y.LastUpdatedAt = now
			y.LastUpdatedBy = userID
			s.data.years[id] = y
		}
	}
	return nil
}

// settings

func (s *memStore) FindSettings(_ context.Context, businessID int64) (*domain.BusinessSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data.settings[businessID]
	if !ok {
		return nil, notFound("settings", businessID)
	}
	return &st, nil
}

func (s *memStore) UpsertSettings(_ context.Context, st domain.BusinessSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.settings[st.BusinessID] = st
	return nil
}

// voucher types

func (s *memStore) SaveVoucherType(_ context.Context, vt domain.VoucherType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vt.ID = s.id()
	s.data.voucherTypes[vt.ID] = vt
	return vt.ID, nil
}

func (s *memStore) FindVoucherTypeByID(_ context.Context, businessID, typeID int64) (*domain.VoucherType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vt, ok := s.data.voucherTypes[typeID]
	if !ok || vt.BusinessID != businessID {
		return nil, notFound("voucher type", typeID)
	}
	return &vt, nil
}

func (s *memStore) ListVoucherTypes(_ context.Context, businessID int64) ([]domain.VoucherType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VoucherType
	for _, vt := range s.data.voucherTypes {
		if vt.BusinessID == businessID {
			out = append(out, vt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// vouchers

func (s *memStore) FindVoucherByID(_ context.Context, businessID, voucherID int64) (*domain.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.vouchers[voucherID]
	if !ok || v.BusinessID != businessID {
		return nil, notFound("voucher", voucherID)
	}
	v.Entries = append([]domain.JournalEntry(nil), v.Entries...)
	return &v, nil
}

func (s *memStore) FindVoucherByIDForUpdate(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error) {
	return s.FindVoucherByID(ctx, businessID, voucherID)
}

func (s *memStore) ListVouchers(_ context.Context, businessID int64, filter domain.VoucherFilter, limit int, _ *string) ([]domain.Voucher, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Voucher
	for _, v := range s.data.vouchers {
		if v.BusinessID != businessID {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.VoucherTypeID != nil && v.VoucherTypeID != *filter.VoucherTypeID {
			continue
		}
		if filter.From != nil && v.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && v.Date.After(*filter.To) {
			continue
		}
		v.Entries = nil
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (s *memStore) SaveVoucher(_ context.Context, v domain.Voucher) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.id()
	entries := make([]domain.JournalEntry, len(v.Entries))
	for i, e := range v.Entries {
		e.ID = s.id()
		e.VoucherID = v.ID
		entries[i] = e
	}
	v.Entries = entries
	s.data.vouchers[v.ID] = v
	return v.ID, nil
}

func (s *memStore) ReplaceDraft(_ context.Context, v domain.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.data.vouchers[v.ID]; !ok || cur.Status != domain.VoucherDraft {
		return notFound("draft voucher", v.ID)
	}
	v.Entries = append([]domain.JournalEntry(nil), v.Entries...)
	s.data.vouchers[v.ID] = v
	return nil
}

func (s *memStore) DeleteVoucher(_ context.Context, businessID, voucherID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data.vouchers[voucherID]; !ok || v.BusinessID != businessID {
		return notFound("voucher", voucherID)
	}
	delete(s.data.vouchers, voucherID)
	return nil
}

func (s *memStore) MarkPosted(_ context.Context, v domain.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.Entries = append([]domain.JournalEntry(nil), v.Entries...)
	s.data.vouchers[v.ID] = v
	return nil
}

func (s *memStore) MarkVoid(_ context.Context, v domain.Voucher, reversals []domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append([]domain.JournalEntry(nil), v.Entries...)
	for _, r := range reversals {
		r.ID = s.id()
		entries = append(entries, r)
	}
	v.Entries = entries
	s.data.vouchers[v.ID] = v
	return nil
}

func (s *memStore) NextSequenceNumber(_ context.Context, businessID, typeID, yearID, start int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seqKey{businessID, typeID, yearID}
	cur, ok := s.data.sequences[key]
	if !ok {
		cur = start - 1
	}
	cur++
	s.data.sequences[key] = cur
	return cur, nil
}

// reporting

func (s *memStore) SumLines(_ context.Context, businessID int64, from *time.Time, to time.Time, ledgerID *int64) ([]domain.LedgerMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := map[int64]*domain.LedgerMovement{}
	for _, v := range s.data.vouchers {
		if v.BusinessID != businessID || v.Status != domain.VoucherPosted {
			continue
		}
		for _, e := range v.Entries {
			if ledgerID != nil && e.LedgerAccountID != *ledgerID {
				continue
			}
			if e.EntryDate.After(to) || (from != nil && e.EntryDate.Before(*from)) {
				continue
			}
			m, ok := totals[e.LedgerAccountID]
			if !ok {
				m = &domain.LedgerMovement{LedgerAccountID: e.LedgerAccountID}
				totals[e.LedgerAccountID] = m
			}
			m.Debit = m.Debit.Add(e.BaseDebit)
			m.Credit = m.Credit.Add(e.BaseCredit)
		}
	}
	out := make([]domain.LedgerMovement, 0, len(totals))
	for _, m := range totals {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LedgerAccountID < out[j].LedgerAccountID })
	return out, nil
}

// ratios

func (s *memStore) SaveRatio(_ context.Context, r domain.FinancialRatio) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.ratios {
		if existing.BusinessID == r.BusinessID && existing.FinancialYearID == r.FinancialYearID && existing.CalculationDate.Equal(r.CalculationDate) {
			return 0, apperrors.ErrDuplicateSnapshot
		}
	}
	r.ID = s.id()
	s.data.ratios[r.ID] = r
	return r.ID, nil
}

func (s *memStore) FindRatioByID(_ context.Context, businessID, ratioID int64) (*domain.FinancialRatio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.ratios[ratioID]
	if !ok || r.BusinessID != businessID {
		return nil, notFound("ratio", ratioID)
	}
	return &r, nil
}

func (s *memStore) FindRatioByDate(_ context.Context, businessID, yearID int64, date time.Time) (*domain.FinancialRatio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.data.ratios {
		if r.BusinessID == businessID && r.FinancialYearID == yearID && r.CalculationDate.Equal(date) {
			return &r, nil
		}
	}
	return nil, notFound("ratio for", date.Format(time.DateOnly))
}

func (s *memStore) ListRatios(_ context.Context, businessID int64, yearID *int64) ([]domain.FinancialRatio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.FinancialRatio
	for _, r := range s.data.ratios {
		if r.BusinessID == businessID && (yearID == nil || r.FinancialYearID == *yearID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalculationDate.Before(out[j].CalculationDate) })
	return out, nil
}

func (s *memStore) UpdateRatio(_ context.Context, r domain.FinancialRatio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.ratios[r.ID]; !ok {
		return notFound("ratio", r.ID)
	}
	s.data.ratios[r.ID] = r
	return nil
}

func (s *memStore) DeleteRatio(_ context.Context, businessID, ratioID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.data.ratios[ratioID]; !ok || r.BusinessID != businessID {
		return notFound("ratio", ratioID)
	}
	delete(s.data.ratios, ratioID)
	return nil
}

// audit log

func (s *memStore) SaveAuditLog(_ context.Context, entry domain.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.data.audit {
		if e.EventID == entry.EventID {
			return nil
		}
	}
	entry.ID = s.id()
	s.data.audit = append(s.data.audit, entry)
	return nil
}

func (s *memStore) ListAuditLogs(_ context.Context, filter domain.AuditLogFilter, limit int, _ *string) ([]domain.AuditLogEntry, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditLogEntry
	for i := len(s.data.audit) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.data.audit[i]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.SubjectKind != domain.EntityUnknown && e.Subject.Kind != filter.SubjectKind {
			continue
		}
		out = append(out, e)
	}
	return out, nil, nil
}

func (s *memStore) ledger(id int64) domain.LedgerAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ledgers[id]
}

// recordingAudit captures audit events synchronously.
type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

var _ portssvc.AuditRecorder = (*recordingAudit)(nil)

func (r *recordingAudit) Record(_ context.Context, ev domain.AuditEvent) domain.AuditLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	entry, _ := domain.NewAuditLogEntry(ev, time.Now().UTC())
	return entry
}

// last returns the most recent event for kind and action.
func (r *recordingAudit) last(kind domain.EntityKind, action domain.AuditAction) (domain.AuditEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev := r.events[i]; ev.Subject.Kind == kind && ev.Action == action {
			return ev, true
		}
	}
	return domain.AuditEvent{}, false
}

func (r *recordingAudit) count(kind domain.EntityKind, action domain.AuditAction) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Subject.Kind == kind && ev.Action == action {
			n++
		}
	}
	return n
}
