package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/stretchr/testify/suite"
)

type ChartServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (s *ChartServiceTestSuite) SetupTest() {
	s.f = newLedgerFixture(s.T())
	s.ctx = context.Background()
}

func TestChartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChartServiceTestSuite))
}

func ptrTo[T any](v T) *T { return &v }

func (s *ChartServiceTestSuite) TestSeedIsIdempotent() {
	groups, err := s.f.chart.SeedDefaultChart(s.ctx, testBusiness, testUser)
	s.Require().NoError(err)
	s.Len(groups, len(domain.DefaultChart()))

	types, err := s.f.vouchers.ListVoucherTypes(s.ctx, testBusiness)
	s.Require().NoError(err)
	s.Len(types, len(domain.DefaultVoucherTypes()))
}

func (s *ChartServiceTestSuite) TestCreateGroup_InheritsParentNature() {
	g, err := s.f.chart.CreateGroup(s.ctx, testBusiness, dto.CreateAccountGroupRequest{
		Name:     "Petty Cash",
		ParentID: ptrTo(s.f.groups[domain.KeyCashInHand]),
	}, testUser)
	s.Require().NoError(err)
	s.Equal(domain.Asset, g.Nature)
	s.False(g.IsSystem)
}

func (s *ChartServiceTestSuite) TestCreateGroup_RootNeedsNature() {
	_, err := s.f.chart.CreateGroup(s.ctx, testBusiness, dto.CreateAccountGroupRequest{Name: "Orphan"}, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ChartServiceTestSuite) TestCreateGroup_StrictNature() {
	req := dto.CreateAccountGroupRequest{
		Name:     "Odd One",
		ParentID: ptrTo(s.f.groups[domain.KeyCurrentAssets]),
		Nature:   string(domain.Liability),
	}
	_, err := s.f.chart.CreateGroup(s.ctx, testBusiness, req, testUser)
	s.Require().NoError(err, "lenient policy allows a nature override")

	_, err = s.f.settings.UpdateSettings(s.ctx, testBusiness, dto.UpdateSettingsRequest{StrictGroupNature: ptrTo(true)}, testUser)
	s.Require().NoError(err)

	req.Name = "Odd Two"
	_, err = s.f.chart.CreateGroup(s.ctx, testBusiness, req, testUser)
	s.ErrorIs(err, apperrors.ErrInvalidHierarchy)
}

func (s *ChartServiceTestSuite) TestUpdateGroup_RejectsCycle() {
	parent, err := s.f.chart.CreateGroup(s.ctx, testBusiness, dto.CreateAccountGroupRequest{Name: "Branches", Nature: string(domain.Asset)}, testUser)
	s.Require().NoError(err)
	child, err := s.f.chart.CreateGroup(s.ctx, testBusiness, dto.CreateAccountGroupRequest{Name: "North", ParentID: &parent.ID}, testUser)
	s.Require().NoError(err)

	_, err = s.f.chart.UpdateGroup(s.ctx, testBusiness, parent.ID, dto.UpdateAccountGroupRequest{ParentID: &child.ID}, testUser)
	s.ErrorIs(err, apperrors.ErrInvalidHierarchy)

	_, err = s.f.chart.UpdateGroup(s.ctx, testBusiness, parent.ID, dto.UpdateAccountGroupRequest{ParentID: &parent.ID}, testUser)
	s.ErrorIs(err, apperrors.ErrInvalidHierarchy)
}

func (s *ChartServiceTestSuite) TestSystemGroupsAreProtected() {
	id := s.f.groups[domain.KeySundryDebtors]

	_, err := s.f.chart.UpdateGroup(s.ctx, testBusiness, id, dto.UpdateAccountGroupRequest{MoveToRoot: true}, testUser)
	s.ErrorIs(err, apperrors.ErrProtectedGroup)

	renamed, err := s.f.chart.UpdateGroup(s.ctx, testBusiness, id, dto.UpdateAccountGroupRequest{Name: ptrTo("Customers")}, testUser)
	s.Require().NoError(err)
	s.Equal("Customers", renamed.Name)

	err = s.f.chart.DeleteGroup(s.ctx, testBusiness, id, testUser)
	s.ErrorIs(err, apperrors.ErrProtectedGroup)
}

func (s *ChartServiceTestSuite) TestDeleteGroup_NotEmpty() {
	g, err := s.f.chart.CreateGroup(s.ctx, testBusiness, dto.CreateAccountGroupRequest{Name: "Deposits", Nature: string(domain.Asset)}, testUser)
	s.Require().NoError(err)
	ledger := s.f.ledger(s.T(), "", "Rent Deposit", func(r *dto.CreateLedgerAccountRequest) { r.GroupID = g.ID })

	err = s.f.chart.DeleteGroup(s.ctx, testBusiness, g.ID, testUser)
	s.ErrorIs(err, apperrors.ErrGroupNotEmpty)

	// Soft deleted ledgers still hold the group.
	s.Require().NoError(s.f.chart.DeleteLedgerAccount(s.ctx, testBusiness, ledger, testUser))
	err = s.f.chart.DeleteGroup(s.ctx, testBusiness, g.ID, testUser)
	s.ErrorIs(err, apperrors.ErrGroupNotEmpty)
}

func (s *ChartServiceTestSuite) TestDeleteGroup_Empty() {
	g, err := s.f.chart.CreateGroup(s.ctx, testBusiness, dto.CreateAccountGroupRequest{Name: "Scratch", Nature: string(domain.Expense)}, testUser)
	s.Require().NoError(err)

	s.Require().NoError(s.f.chart.DeleteGroup(s.ctx, testBusiness, g.ID, testUser))
	_, err = s.f.chart.GetGroup(s.ctx, testBusiness, g.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ChartServiceTestSuite) TestLedgerSoftDeleteAndRestore() {
	err := s.f.chart.DeleteLedgerAccount(s.ctx, testBusiness, s.f.debtor, testUser)
	s.Require().NoError(err)

	active, err := s.f.chart.ListLedgerAccounts(s.ctx, testBusiness, false)
	s.Require().NoError(err)
	for _, l := range active {
		s.NotEqual(s.f.debtor, l.ID)
	}

	s.ErrorIs(s.f.chart.DeleteLedgerAccount(s.ctx, testBusiness, s.f.debtor, testUser), apperrors.ErrNotFound)

	restored, err := s.f.chart.RestoreLedgerAccount(s.ctx, testBusiness, s.f.debtor, testUser)
	s.Require().NoError(err)
	s.False(restored.IsDeleted())
	s.Equal(1, s.f.audit.count(domain.EntityLedgerAccount, domain.ActionRestore))

	_, err = s.f.chart.RestoreLedgerAccount(s.ctx, testBusiness, s.f.debtor, testUser)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *ChartServiceTestSuite) TestMoveLedgerFlipsSignAcrossNatures() {
	f := s.f
	f.post(s.T(), domain.NatureJournal, "2024-06-01", debit(f.debtor, "80"), credit(f.sales, "80"))

	moved, err := f.chart.UpdateLedgerAccount(s.ctx, testBusiness, f.debtor, dto.UpdateLedgerAccountRequest{
		GroupID: ptrTo(f.groups[domain.KeySundryCreditors]),
	}, testUser)
	s.Require().NoError(err)
	s.True(moved.CurrentBalance.Equal(dec("-80")), "a debit balance is negative under a liability group")

	discrepancies, err := f.reports.VerifyBalances(s.ctx, testBusiness)
	s.Require().NoError(err)
	s.Empty(discrepancies)
}

func (s *ChartServiceTestSuite) TestOpeningBalancePrecision() {
	_, err := s.f.chart.CreateLedgerAccount(s.ctx, testBusiness, dto.CreateLedgerAccountRequest{
		GroupID:        s.f.groups[domain.KeyFixedAssets],
		Name:           "Machinery",
		OpeningBalance: dec("10.005"),
	}, testUser)
	s.ErrorIs(err, apperrors.ErrPrecisionExceeded)
}

func (s *ChartServiceTestSuite) TestGroupTree() {
	tree, err := s.f.chart.GetGroupTree(s.ctx, testBusiness)
	s.Require().NoError(err)
	ca, ok := tree.BySystemKey(domain.KeyCurrentAssets)
	s.Require().True(ok)
	s.Len(tree.Children(ca.ID), 4)
}
