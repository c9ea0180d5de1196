package domain

// System group keys. Ratio inputs are located through these keys, so they
// must stay stable across releases.
const (
	KeyCurrentAssets      = "current_assets"
	KeyStockInHand        = "stock_in_hand"
	KeySundryDebtors      = "sundry_debtors"
	KeyBankAccounts       = "bank_accounts"
	KeyCashInHand         = "cash_in_hand"
	KeyFixedAssets        = "fixed_assets"
	KeyInvestments        = "investments"
	KeyCurrentLiabilities = "current_liabilities"
	KeySundryCreditors    = "sundry_creditors"
	KeyDutiesAndTaxes     = "duties_and_taxes"
	KeyLoans              = "loans"
	KeyCapital            = "capital"
	KeyReservesAndSurplus = "reserves_and_surplus"
	KeySales              = "sales_accounts"
	KeyPurchases          = "purchase_accounts"
	KeyDirectExpenses     = "direct_expenses"
	KeyDirectIncomes      = "direct_incomes"
	KeyIndirectExpenses   = "indirect_expenses"
	KeyInterestExpense    = "interest_expense"
	KeyIndirectIncomes    = "indirect_incomes"
)

// SystemGroupTemplate describes one group of the default chart.
type SystemGroupTemplate struct {
	Key                string
	ParentKey          string
	Name               string
	Nature             Nature
	AffectsGrossProfit bool
}

// DefaultChart returns the system groups seeded for every new business.
// Parents always precede their children.
func DefaultChart() []SystemGroupTemplate {
	return []SystemGroupTemplate{
		{Key: KeyCurrentAssets, Name: "Current Assets", Nature: Asset},
		{Key: KeyStockInHand, ParentKey: KeyCurrentAssets, Name: "Stock-in-Hand", Nature: Asset},
		{Key: KeySundryDebtors, ParentKey: KeyCurrentAssets, Name: "Sundry Debtors", Nature: Asset},
		{Key: KeyBankAccounts, ParentKey: KeyCurrentAssets, Name: "Bank Accounts", Nature: Asset},
		{Key: KeyCashInHand, ParentKey: KeyCurrentAssets, Name: "Cash-in-Hand", Nature: Asset},
		{Key: KeyFixedAssets, Name: "Fixed Assets", Nature: Asset},
		{Key: KeyInvestments, Name: "Investments", Nature: Asset},
		{Key: KeyCurrentLiabilities, Name: "Current Liabilities", Nature: Liability},
		{Key: KeySundryCreditors, ParentKey: KeyCurrentLiabilities, Name: "Sundry Creditors", Nature: Liability},
		{Key: KeyDutiesAndTaxes, ParentKey: KeyCurrentLiabilities, Name: "Duties & Taxes", Nature: Liability},
		{Key: KeyLoans, Name: "Loans (Liability)", Nature: Liability},
		{Key: KeyCapital, Name: "Capital Account", Nature: Equity},
		{Key: KeyReservesAndSurplus, ParentKey: KeyCapital, Name: "Reserves & Surplus", Nature: Equity},
		{Key: KeySales, Name: "Sales Accounts", Nature: Income, AffectsGrossProfit: true},
		{Key: KeyDirectIncomes, Name: "Direct Incomes", Nature: Income, AffectsGrossProfit: true},
		{Key: KeyIndirectIncomes, Name: "Indirect Incomes", Nature: Income},
		{Key: KeyPurchases, Name: "Purchase Accounts", Nature: Expense, AffectsGrossProfit: true},
		{Key: KeyDirectExpenses, Name: "Direct Expenses", Nature: Expense, AffectsGrossProfit: true},
		{Key: KeyIndirectExpenses, Name: "Indirect Expenses", Nature: Expense},
		{Key: KeyInterestExpense, ParentKey: KeyIndirectExpenses, Name: "Interest Expense", Nature: Expense},
	}
}
