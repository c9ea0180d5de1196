package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityKind_RoundTrip(t *testing.T) {
	for k := domain.EntityCurrency; k <= domain.EntityBusinessSettings; k++ {
		parsed, err := domain.ParseEntityKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := domain.ParseEntityKind("invoice")
	assert.Error(t, err)
}

func TestNewAuditLogEntry_UpdateKeepsChangedFieldsOnly(t *testing.T) {
	before := domain.Currency{Code: "EUR", Name: "Euro", Symbol: "€", ExchangeRate: dec("1.1")}
	after := before
	after.ExchangeRate = dec("1.2")
	after.LastUpdatedAt = time.Now()

	entry, err := domain.NewAuditLogEntry(domain.AuditEvent{
		Action:   domain.ActionUpdate,
		Subject:  domain.EntityRef{Kind: domain.EntityCurrency, ID: "EUR"},
		Before:   before,
		After:    after,
		CauserID: "u-1",
	}, time.Now())
	require.NoError(t, err)

	var oldValues, newValues map[string]any
	require.NoError(t, json.Unmarshal(entry.OldValues, &oldValues))
	require.NoError(t, json.Unmarshal(entry.NewValues, &newValues))
	assert.Equal(t, map[string]any{"exchangeRate": "1.1"}, oldValues)
	assert.Equal(t, map[string]any{"exchangeRate": "1.2"}, newValues)
	assert.NotEqual(t, [16]byte{}, [16]byte(entry.EventID))
}

func TestNewAuditLogEntry_CreateHasNoOldValues(t *testing.T) {
	bid := int64(3)
	entry, err := domain.NewAuditLogEntry(domain.AuditEvent{
		BusinessID: &bid,
		Action:     domain.ActionCreate,
		Subject:    domain.RefOf(domain.EntityFinancialYear, 12),
		After:      domain.FinancialYear{ID: 12, Name: "FY"},
	}, time.Now())
	require.NoError(t, err)

	assert.Nil(t, entry.OldValues)
	assert.NotEmpty(t, entry.NewValues)
	assert.Equal(t, "12", entry.Subject.ID)

	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"kind":"financial_year"`)
}
