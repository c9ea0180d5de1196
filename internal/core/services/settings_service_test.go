package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/stretchr/testify/suite"
)

type SettingsServiceTestSuite struct {
	suite.Suite
	store   *memStore
	audit   *recordingAudit
	service portssvc.SettingsSvcFacade
	ctx     context.Context
}

func (s *SettingsServiceTestSuite) SetupTest() {
	s.store = newMemStore()
	s.audit = &recordingAudit{}
	s.service = services.NewSettingsService(s.store, services.SettingsDefaults{AmountPrecision: 3}, s.audit)
	s.ctx = context.Background()
}

func TestSettingsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettingsServiceTestSuite))
}

func (s *SettingsServiceTestSuite) TestGetSettings_DefaultsWhenUnset() {
	got, err := s.service.GetSettings(s.ctx, testBusiness)
	s.Require().NoError(err)
	s.Equal(testBusiness, got.BusinessID)
	s.Equal(int32(3), got.AmountPrecision)
	s.Equal(domain.VoidOnVoidDate, got.VoidDating)
	s.False(got.StrictGroupNature)
}

func (s *SettingsServiceTestSuite) TestUpdateSettings_CreateThenUpdate() {
	created, err := s.service.UpdateSettings(s.ctx, testBusiness, dto.UpdateSettingsRequest{AmountPrecision: ptrTo(int32(4))}, testUser)
	s.Require().NoError(err)
	s.Equal(int32(4), created.AmountPrecision)
	s.Equal(testUser, created.CreatedBy)
	s.Equal(1, s.audit.count(domain.EntityBusinessSettings, domain.ActionCreate))

	updated, err := s.service.UpdateSettings(s.ctx, testBusiness, dto.UpdateSettingsRequest{VoidDating: ptrTo(string(domain.VoidOnOriginalDate))}, testUser)
	s.Require().NoError(err)
	s.Equal(int32(4), updated.AmountPrecision, "unset fields are kept")
	s.Equal(domain.VoidOnOriginalDate, updated.VoidDating)
	s.Equal(1, s.audit.count(domain.EntityBusinessSettings, domain.ActionUpdate))

	got, err := s.service.GetSettings(s.ctx, testBusiness)
	s.Require().NoError(err)
	s.Equal(domain.VoidOnOriginalDate, got.VoidDating)
}

func (s *SettingsServiceTestSuite) TestUpdateSettings_Invalid() {
	tests := []struct {
		name string
		req  dto.UpdateSettingsRequest
	}{
		{"precision too low", dto.UpdateSettingsRequest{AmountPrecision: ptrTo(int32(1))}},
		{"precision too high", dto.UpdateSettingsRequest{AmountPrecision: ptrTo(int32(7))}},
		{"unknown void dating", dto.UpdateSettingsRequest{VoidDating: ptrTo("tomorrow")}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.UpdateSettings(s.ctx, testBusiness, tt.req, testUser)
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	s.Equal(0, s.audit.count(domain.EntityBusinessSettings, domain.ActionCreate))
}
