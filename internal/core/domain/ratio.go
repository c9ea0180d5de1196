package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatioScale is the number of fractional digits kept on every ratio.
const RatioScale int32 = 4

var hundred = decimal.NewFromInt(100)

// RatioValues holds the fourteen derived ratios. A nil value means the
// ratio is undefined: a denominator was zero or an input group is absent.
type RatioValues struct {
	CurrentRatio            *decimal.Decimal `json:"currentRatio"`
	QuickRatio              *decimal.Decimal `json:"quickRatio"`
	CashRatio               *decimal.Decimal `json:"cashRatio"`
	GrossProfitMargin       *decimal.Decimal `json:"grossProfitMargin"` // percent
	NetProfitMargin         *decimal.Decimal `json:"netProfitMargin"`   // percent
	ReturnOnAssets          *decimal.Decimal `json:"returnOnAssets"`    // percent
	ReturnOnEquity          *decimal.Decimal `json:"returnOnEquity"`    // percent
	AssetTurnover           *decimal.Decimal `json:"assetTurnover"`
	InventoryTurnover       *decimal.Decimal `json:"inventoryTurnover"`
	DaysSalesOutstanding    *decimal.Decimal `json:"daysSalesOutstanding"`
	DaysPayablesOutstanding *decimal.Decimal `json:"daysPayablesOutstanding"`
	DebtRatio               *decimal.Decimal `json:"debtRatio"`
	DebtToEquity            *decimal.Decimal `json:"debtToEquity"`
	InterestCoverage        *decimal.Decimal `json:"interestCoverage"`
}

// FinancialRatio is a stored snapshot of ratios for a business and year as
// of a calculation date.
type FinancialRatio struct {
	ID              int64     `json:"id"`
	BusinessID      int64     `json:"businessID"`
	FinancialYearID int64     `json:"financialYearID"`
	CalculationDate time.Time `json:"calculationDate"`
	RatioValues
	AuditFields
}

// RatioInputs are the aggregates the ratios are derived from. Balance
// items are closing balances as of the calculation date; profit and loss
// items are movements from the start of the year to that date. All values
// are signed in their own nature, and nil marks an absent group.
type RatioInputs struct {
	CurrentAssets      *decimal.Decimal
	CurrentLiabilities *decimal.Decimal
	Inventory          *decimal.Decimal
	Receivables        *decimal.Decimal
	CashAndBank        *decimal.Decimal
	Payables           *decimal.Decimal
	TotalAssets        *decimal.Decimal
	TotalLiabilities   *decimal.Decimal
	Equity             *decimal.Decimal

	Sales            *decimal.Decimal
	TradingIncome    *decimal.Decimal // income groups that affect gross profit, sales included
	TradingExpenses  *decimal.Decimal // expense groups that affect gross profit
	IndirectIncome   *decimal.Decimal
	IndirectExpenses *decimal.Decimal
	InterestExpense  *decimal.Decimal

	DaysElapsed int
}

// GrossProfit returns trading income less trading expenses.
func (in RatioInputs) GrossProfit() *decimal.Decimal {
	return sub(in.TradingIncome, in.TradingExpenses)
}

// NetProfit returns gross profit plus indirect income less indirect expenses.
// Missing indirect groups count as zero since a business may have none.
func (in RatioInputs) NetProfit() *decimal.Decimal {
	gp := in.GrossProfit()
	if gp == nil {
		return nil
	}
	np := *gp
	if in.IndirectIncome != nil {
		np = np.Add(*in.IndirectIncome)
	}
	if in.IndirectExpenses != nil {
		np = np.Sub(*in.IndirectExpenses)
	}
	return &np
}

// CalculateRatios derives every ratio from in. It never fails; undefined
// ratios are left nil.
func CalculateRatios(in RatioInputs) RatioValues {
	days := decimal.NewFromInt(int64(in.DaysElapsed))
	np := in.NetProfit()
	return RatioValues{
		CurrentRatio:            div(in.CurrentAssets, in.CurrentLiabilities),
		QuickRatio:              div(sub(in.CurrentAssets, in.Inventory), in.CurrentLiabilities),
		CashRatio:               div(in.CashAndBank, in.CurrentLiabilities),
		GrossProfitMargin:       pct(in.GrossProfit(), in.Sales),
		NetProfitMargin:         pct(np, in.Sales),
		ReturnOnAssets:          pct(np, in.TotalAssets),
		ReturnOnEquity:          pct(np, in.Equity),
		AssetTurnover:           div(in.Sales, in.TotalAssets),
		InventoryTurnover:       div(in.TradingExpenses, in.Inventory),
		DaysSalesOutstanding:    div(mul(in.Receivables, &days), in.Sales),
		DaysPayablesOutstanding: div(mul(in.Payables, &days), in.TradingExpenses),
		DebtRatio:               div(in.TotalLiabilities, in.TotalAssets),
		DebtToEquity:            div(in.TotalLiabilities, in.Equity),
		InterestCoverage:        div(add(np, in.InterestExpense), in.InterestExpense),
	}
}

func div(num, den *decimal.Decimal) *decimal.Decimal {
	if num == nil || den == nil || den.IsZero() {
		return nil
	}
	v := num.DivRound(*den, RatioScale)
	return &v
}

func pct(num, den *decimal.Decimal) *decimal.Decimal {
	if num == nil {
		return nil
	}
	scaled := num.Mul(hundred)
	return div(&scaled, den)
}

func sub(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	v := a.Sub(*b)
	return &v
}

func add(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	v := a.Add(*b)
	return &v
}

func mul(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	v := a.Mul(*b)
	return &v
}

// BuildRatioInputs locates ratio inputs in a group tree. balances holds
// rolled-up closing balances per group and movements holds rolled-up
// period movements per group, both signed in each group's nature.
func BuildRatioInputs(tree *GroupTree, balances, movements map[int64]decimal.Decimal, daysElapsed int) RatioInputs {
	byKey := func(totals map[int64]decimal.Decimal, keys ...string) *decimal.Decimal {
		var out *decimal.Decimal
		for _, key := range keys {
			g, ok := tree.BySystemKey(key)
			if !ok {
				continue
			}
			v := totals[g.ID]
			if out != nil {
				v = v.Add(*out)
			}
			out = &v
		}
		return out
	}
	trading := func(g AccountGroup) bool { return g.AffectsGrossProfit }
	indirect := func(g AccountGroup) bool { return !g.AffectsGrossProfit }

	return RatioInputs{
		CurrentAssets:      byKey(balances, KeyCurrentAssets),
		CurrentLiabilities: byKey(balances, KeyCurrentLiabilities),
		Inventory:          byKey(balances, KeyStockInHand),
		Receivables:        byKey(balances, KeySundryDebtors),
		CashAndBank:        byKey(balances, KeyBankAccounts, KeyCashInHand),
		Payables:           byKey(balances, KeySundryCreditors),
		TotalAssets:        tree.NatureTotal(balances, Asset, nil),
		TotalLiabilities:   tree.NatureTotal(balances, Liability, nil),
		Equity:             tree.NatureTotal(balances, Equity, nil),
		Sales:              byKey(movements, KeySales),
		TradingIncome:      tree.NatureTotal(movements, Income, trading),
		TradingExpenses:    tree.NatureTotal(movements, Expense, trading),
		IndirectIncome:     tree.NatureTotal(movements, Income, indirect),
		IndirectExpenses:   tree.NatureTotal(movements, Expense, indirect),
		InterestExpense:    byKey(movements, KeyInterestExpense),
		DaysElapsed:        daysElapsed,
	}
}
