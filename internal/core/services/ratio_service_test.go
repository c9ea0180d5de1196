package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// stubLocker hands out locks unless busy is set.
type stubLocker struct {
	mu       sync.Mutex
	busy     bool
	keys     []string
	released int
}

func (l *stubLocker) Obtain(_ context.Context, key string, _ time.Duration) (portssvc.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return nil, apperrors.ErrContention
	}
	l.keys = append(l.keys, key)
	return stubLock{l}, nil
}

type stubLock struct{ l *stubLocker }

func (s stubLock) Release(context.Context) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	s.l.released++
	return nil
}

// outsideTxReporting fails every read made outside a unit of work.
type outsideTxReporting struct {
	portsrepo.ReportingRepository
}

func (outsideTxReporting) SumLines(context.Context, int64, *time.Time, time.Time, *int64) ([]domain.LedgerMovement, error) {
	return nil, errors.New("ledger read outside the ratio snapshot")
}

type RatioServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (s *RatioServiceTestSuite) SetupTest() {
	s.f = newLedgerFixture(s.T())
	s.ctx = context.Background()
}

func TestRatioServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RatioServiceTestSuite))
}

func (s *RatioServiceTestSuite) requireRatio(got *decimal.Decimal, want, name string) {
	s.Require().NotNil(got, name)
	s.True(got.Equal(dec(want)), "%s: got %s want %s", name, got, want)
}

// trade posts capital, a credit sale, a cash purchase and a credit purchase.
func (s *RatioServiceTestSuite) trade() {
	f := s.f
	supplier := f.ledger(s.T(), domain.KeySundryCreditors, "Northwind Supplies", nil)
	f.post(s.T(), domain.NatureReceipt, "2024-04-02", debit(f.cash, "2000"), credit(f.capital, "2000"))
	f.post(s.T(), domain.NatureJournal, "2024-05-10", debit(f.debtor, "1000"), credit(f.sales, "1000"))
	f.post(s.T(), domain.NaturePayment, "2024-05-20", debit(f.purchase, "400"), credit(f.cash, "400"))
	f.post(s.T(), domain.NatureJournal, "2024-06-01", debit(f.purchase, "200"), credit(supplier, "200"))
}

func (s *RatioServiceTestSuite) TestCalculate_NoActivityLeavesRatiosUndefined() {
	r, err := s.f.ratios.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-05-01"), testUser)
	s.Require().NoError(err)
	s.NotZero(r.ID)
	s.Nil(r.CurrentRatio)
	s.Nil(r.QuickRatio)
	s.Nil(r.GrossProfitMargin)
	s.Nil(r.ReturnOnEquity)
	s.Nil(r.DebtRatio)
	s.Nil(r.InterestCoverage)
}

func (s *RatioServiceTestSuite) TestCalculate_Values() {
	s.trade()
	date := day("2024-06-30")

	r, err := s.f.ratios.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, date, testUser)
	s.Require().NoError(err)

	s.requireRatio(r.CurrentRatio, "13", "current")
	s.requireRatio(r.QuickRatio, "13", "quick")
	s.requireRatio(r.CashRatio, "8", "cash")
	s.requireRatio(r.GrossProfitMargin, "40", "gross margin")
	s.requireRatio(r.NetProfitMargin, "40", "net margin")
	s.requireRatio(r.ReturnOnEquity, "20", "return on equity")
	s.requireRatio(r.DebtToEquity, "0.1", "debt to equity")
	s.requireRatio(r.DebtRatio, "0.0769", "debt ratio")
	s.requireRatio(r.ReturnOnAssets, "15.3846", "return on assets")
	days := decimal.NewFromInt(int64(s.f.year.DaysElapsed(date)))
	s.requireRatio(r.DaysSalesOutstanding, days.String(), "days sales outstanding")

	s.Nil(r.InventoryTurnover, "no stock on hand")
	s.Nil(r.InterestCoverage, "no interest expense")
	s.Equal(1, s.f.audit.count(domain.EntityFinancialRatio, domain.ActionCreate))
}

func (s *RatioServiceTestSuite) TestCalculate_DuplicateSnapshot() {
	_, err := s.f.ratios.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-06-30"), testUser)
	s.Require().NoError(err)

	_, err = s.f.ratios.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-06-30"), testUser)
	s.ErrorIs(err, apperrors.ErrDuplicateSnapshot)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *RatioServiceTestSuite) TestCalculate_DateOutsideYear() {
	_, err := s.f.ratios.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2025-04-01"), testUser)
	s.ErrorIs(err, apperrors.ErrDateOutsideFinancialYear)
}

func (s *RatioServiceTestSuite) TestCalculate_UnknownYear() {
	_, err := s.f.ratios.CalculateRatios(s.ctx, testBusiness, 9999, day("2024-06-30"), testUser)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RatioServiceTestSuite) TestRecalculate_PicksUpNewPostings() {
	s.trade()
	r, err := s.f.ratios.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-06-30"), testUser)
	s.Require().NoError(err)

	s.f.post(s.T(), domain.NatureJournal, "2024-06-15", debit(s.f.debtor, "200"), credit(s.f.sales, "200"))
	again, err := s.f.ratios.RecalculateRatios(s.ctx, testBusiness, r.ID, testUser)
	s.Require().NoError(err)
	s.Equal(r.ID, again.ID)
	s.requireRatio(again.CurrentRatio, "14", "current")

	stored, err := s.f.ratios.GetRatios(s.ctx, testBusiness, r.ID)
	s.Require().NoError(err)
	s.requireRatio(stored.CurrentRatio, "14", "stored current")
	s.Equal(1, s.f.audit.count(domain.EntityFinancialRatio, domain.ActionUpdate))
}

func (s *RatioServiceTestSuite) TestCalculate_ReadsOneSnapshot() {
	s.trade()
	repos := s.f.store.provider()
	repos.Reporting = outsideTxReporting{}
	svc := services.NewRatioService(repos, s.f.audit)

	r, err := svc.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-06-30"), testUser)
	s.Require().NoError(err)
	s.requireRatio(r.CurrentRatio, "13", "current")
	s.requireRatio(r.GrossProfitMargin, "40", "gross margin")
	s.Equal(1, s.f.store.snapshots)

	s.f.post(s.T(), domain.NatureJournal, "2024-06-15", debit(s.f.debtor, "200"), credit(s.f.sales, "200"))
	again, err := svc.RecalculateRatios(s.ctx, testBusiness, r.ID, testUser)
	s.Require().NoError(err)
	s.requireRatio(again.CurrentRatio, "14", "current")
	s.Equal(2, s.f.store.snapshots)
}

func (s *RatioServiceTestSuite) TestCalculate_DuplicateCheckedInsideSnapshot() {
	repos := s.f.store.provider()
	repos.Reporting = outsideTxReporting{}
	svc := services.NewRatioService(repos, s.f.audit)

	_, err := svc.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-06-30"), testUser)
	s.Require().NoError(err)
	_, err = svc.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-06-30"), testUser)
	s.ErrorIs(err, apperrors.ErrDuplicateSnapshot)

	all, err := svc.ListRatios(s.ctx, testBusiness, &s.f.year.ID)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *RatioServiceTestSuite) TestListAndDelete() {
	for _, d := range []string{"2024-05-31", "2024-06-30"} {
		_, err := s.f.ratios.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day(d), testUser)
		s.Require().NoError(err)
	}
	all, err := s.f.ratios.ListRatios(s.ctx, testBusiness, &s.f.year.ID)
	s.Require().NoError(err)
	s.Require().Len(all, 2)

	s.Require().NoError(s.f.ratios.DeleteRatios(s.ctx, testBusiness, all[0].ID, testUser))
	_, err = s.f.ratios.GetRatios(s.ctx, testBusiness, all[0].ID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	other := int64(777)
	none, err := s.f.ratios.ListRatios(s.ctx, testBusiness, &other)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *RatioServiceTestSuite) TestLocker() {
	locker := &stubLocker{}
	svc := services.NewRatioService(s.f.store.provider(), s.f.audit, services.WithRatioLocker(locker, time.Second))

	_, err := svc.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-06-30"), testUser)
	s.Require().NoError(err)
	s.Require().Len(locker.keys, 1)
	s.Contains(locker.keys[0], "2024-06-30")
	s.Equal(1, locker.released)

	locker.busy = true
	_, err = svc.CalculateRatios(s.ctx, testBusiness, s.f.year.ID, day("2024-07-31"), testUser)
	s.ErrorIs(err, apperrors.ErrContention)
	s.Equal("contention", apperrors.Code(err))
}
