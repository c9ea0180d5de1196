package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testBusiness int64 = 1
	testUser           = "user-1"
)

// ledgerFixture is a business with a seeded chart, a default currency, an
// open financial year and a handful of ledger accounts.
type ledgerFixture struct {
	store    *memStore
	audit    *recordingAudit
	defaults services.SettingsDefaults

	currency portssvc.CurrencySvcFacade
	chart    portssvc.ChartSvcFacade
	years    portssvc.FinancialYearSvcFacade
	settings portssvc.SettingsSvcFacade
	vouchers portssvc.VoucherSvcFacade
	ratios   portssvc.RatioSvcFacade
	reports  portssvc.ReportingService

	year     *domain.FinancialYear
	types    map[domain.VoucherNature]int64
	groups   map[string]int64
	cash     int64
	bank     int64
	sales    int64
	purchase int64
	debtor   int64
	capital  int64
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	f := &ledgerFixture{
		store:    newMemStore(),
		audit:    &recordingAudit{},
		defaults: services.SettingsDefaults{AmountPrecision: 2, VoidDating: domain.VoidOnOriginalDate},
		types:    map[domain.VoucherNature]int64{},
		groups:   map[string]int64{},
	}
	repos := f.store.provider()
	f.currency = services.NewCurrencyService(repos.Currency, repos.UnitOfWork, f.audit)
	f.chart = services.NewChartService(repos, f.defaults, f.audit)
	f.years = services.NewFinancialYearService(repos.Year, repos.UnitOfWork, f.audit)
	f.settings = services.NewSettingsService(repos.Settings, f.defaults, f.audit)
	f.vouchers = services.NewVoucherService(repos, f.defaults, f.audit)
	f.ratios = services.NewRatioService(repos, f.audit)
	f.reports = services.NewReportingService(repos)

	_, err := f.currency.CreateCurrency(ctx, dto.CreateCurrencyRequest{Code: "INR", Name: "Indian Rupee", Symbol: "₹"}, testUser)
	require.NoError(t, err)

	groups, err := f.chart.SeedDefaultChart(ctx, testBusiness, testUser)
	require.NoError(t, err)
	for _, g := range groups {
		f.groups[g.SystemKey] = g.ID
	}
	vts, err := f.vouchers.ListVoucherTypes(ctx, testBusiness)
	require.NoError(t, err)
	for _, vt := range vts {
		f.types[vt.Nature] = vt.ID
	}

	f.year, err = f.years.CreateFinancialYear(ctx, testBusiness, dto.CreateFinancialYearRequest{
		Name:      "FY 2024-25",
		StartDate: dto.NewDate(day("2024-04-01")),
		EndDate:   dto.NewDate(day("2025-03-31")),
	}, testUser)
	require.NoError(t, err)

	f.cash = f.ledger(t, domain.KeyCashInHand, "Cash", func(r *dto.CreateLedgerAccountRequest) { r.IsCashAccount = true })
	f.bank = f.ledger(t, domain.KeyBankAccounts, "HDFC Current", func(r *dto.CreateLedgerAccountRequest) { r.IsBankAccount = true })
	f.sales = f.ledger(t, domain.KeySales, "Sales", nil)
	f.purchase = f.ledger(t, domain.KeyPurchases, "Purchases", nil)
	f.debtor = f.ledger(t, domain.KeySundryDebtors, "Acme Traders", nil)
	f.capital = f.ledger(t, domain.KeyCapital, "Owner Capital", nil)
	return f
}

func (f *ledgerFixture) ledger(t *testing.T, groupKey, name string, opt func(*dto.CreateLedgerAccountRequest)) int64 {
	t.Helper()
	req := dto.CreateLedgerAccountRequest{GroupID: f.groups[groupKey], Name: name}
	if opt != nil {
		opt(&req)
	}
	l, err := f.chart.CreateLedgerAccount(context.Background(), testBusiness, req, testUser)
	require.NoError(t, err)
	return l.ID
}

func debit(ledger int64, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{LedgerAccountID: ledger, DebitAmount: dec(amount)}
}

func credit(ledger int64, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{LedgerAccountID: ledger, CreditAmount: dec(amount)}
}

func (f *ledgerFixture) draft(t *testing.T, nature domain.VoucherNature, date string, lines ...dto.JournalLineRequest) *domain.Voucher {
	t.Helper()
	v, err := f.vouchers.CreateDraft(context.Background(), testBusiness, dto.CreateVoucherRequest{
		VoucherTypeID: f.types[nature],
		Date:          dto.NewDate(day(date)),
		Lines:         lines,
	}, testUser)
	require.NoError(t, err)
	return v
}

func (f *ledgerFixture) post(t *testing.T, nature domain.VoucherNature, date string, lines ...dto.JournalLineRequest) *domain.Voucher {
	t.Helper()
	v := f.draft(t, nature, date, lines...)
	posted, err := f.vouchers.PostVoucher(context.Background(), testBusiness, v.ID, testUser)
	require.NoError(t, err)
	return posted
}
