package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/stretchr/testify/suite"
)

type FinancialYearServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (s *FinancialYearServiceTestSuite) SetupTest() {
	s.f = newLedgerFixture(s.T())
	s.ctx = context.Background()
}

func TestFinancialYearServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FinancialYearServiceTestSuite))
}

func yearReq(name, start, end string, current bool) dto.CreateFinancialYearRequest {
	return dto.CreateFinancialYearRequest{
		Name:      name,
		StartDate: dto.NewDate(day(start)),
		EndDate:   dto.NewDate(day(end)),
		IsCurrent: current,
	}
}

func (s *FinancialYearServiceTestSuite) TestFirstYearIsCurrent() {
	s.True(s.f.year.IsCurrent)
	s.False(s.f.year.IsLocked)
}

func (s *FinancialYearServiceTestSuite) TestCreate_Overlap() {
	_, err := s.f.years.CreateFinancialYear(s.ctx, testBusiness, yearReq("FY overlap", "2025-03-31", "2026-03-30", false), testUser)
	s.ErrorIs(err, apperrors.ErrOverlappingPeriod)
	s.Equal("overlapping_period", apperrors.Code(err))
}

func (s *FinancialYearServiceTestSuite) TestCreate_EndBeforeStart() {
	_, err := s.f.years.CreateFinancialYear(s.ctx, testBusiness, yearReq("FY bad", "2026-03-31", "2025-04-01", false), testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *FinancialYearServiceTestSuite) TestCreate_SingleDayYear() {
	y, err := s.f.years.CreateFinancialYear(s.ctx, testBusiness, yearReq("Stub", "2025-04-01", "2025-04-01", false), testUser)
	s.Require().NoError(err)
	s.True(y.Contains(day("2025-04-01")))
	s.False(y.IsCurrent)
}

func (s *FinancialYearServiceTestSuite) TestSetCurrent_LeavesOneCurrent() {
	next, err := s.f.years.CreateFinancialYear(s.ctx, testBusiness, yearReq("FY 2025-26", "2025-04-01", "2026-03-31", true), testUser)
	s.Require().NoError(err)
	s.True(next.IsCurrent)

	_, err = s.f.years.SetCurrentFinancialYear(s.ctx, testBusiness, s.f.year.ID, testUser)
	s.Require().NoError(err)

	years, err := s.f.years.ListFinancialYears(s.ctx, testBusiness)
	s.Require().NoError(err)
	current := 0
	for _, y := range years {
		if y.IsCurrent {
			current++
			s.Equal(s.f.year.ID, y.ID)
		}
	}
	s.Equal(1, current)
}

func (s *FinancialYearServiceTestSuite) TestLockUnlock() {
	locked, err := s.f.years.LockFinancialYear(s.ctx, testBusiness, s.f.year.ID, testUser)
	s.Require().NoError(err)
	s.True(locked.IsLocked)
	s.Require().NotNil(locked.LockedBy)
	s.Equal(testUser, *locked.LockedBy)

	_, err = s.f.years.LockFinancialYear(s.ctx, testBusiness, s.f.year.ID, testUser)
	s.ErrorIs(err, apperrors.ErrAlreadyLocked)

	_, err = s.f.years.UnlockFinancialYear(s.ctx, testBusiness, s.f.year.ID, false, testUser)
	s.ErrorIs(err, apperrors.ErrConfirmationRequired)

	unlocked, err := s.f.years.UnlockFinancialYear(s.ctx, testBusiness, s.f.year.ID, true, testUser)
	s.Require().NoError(err)
	s.False(unlocked.IsLocked)
	s.Nil(unlocked.LockedAt)

	_, err = s.f.years.UnlockFinancialYear(s.ctx, testBusiness, s.f.year.ID, true, testUser)
	s.ErrorIs(err, apperrors.ErrNotLocked)
}

func (s *FinancialYearServiceTestSuite) TestValidatePostingDate() {
	y, err := s.f.years.ValidatePostingDate(s.ctx, testBusiness, day("2025-03-31"))
	s.Require().NoError(err)
	s.Equal(s.f.year.ID, y.ID)

	_, err = s.f.years.ValidatePostingDate(s.ctx, testBusiness, day("2025-04-01"))
	s.ErrorIs(err, apperrors.ErrDateOutsideFinancialYear)

	_, err = s.f.years.LockFinancialYear(s.ctx, testBusiness, s.f.year.ID, testUser)
	s.Require().NoError(err)
	_, err = s.f.years.ValidatePostingDate(s.ctx, testBusiness, day("2024-04-01"))
	s.ErrorIs(err, apperrors.ErrFinancialYearLocked)
}

func (s *FinancialYearServiceTestSuite) TestMutationsAreAudited() {
	before := s.f.audit.count(domain.EntityFinancialYear, domain.ActionUpdate)
	_, err := s.f.years.LockFinancialYear(s.ctx, testBusiness, s.f.year.ID, testUser)
	s.Require().NoError(err)
	s.Equal(before+1, s.f.audit.count(domain.EntityFinancialYear, domain.ActionUpdate))
}
