package repositories

import "context"

// TxRepositories groups the repositories that take part in an atomic unit
// of work. Every repository in the group shares the same database
// transaction.
type TxRepositories struct {
	Currency    CurrencyRepositoryFacade
	Group       AccountGroupRepositoryFacade
	Ledger      LedgerAccountRepositoryFacade
	Year        FinancialYearRepositoryFacade
	Settings    SettingsRepositoryFacade
	VoucherType VoucherTypeRepositoryFacade
	Voucher     VoucherRepositoryFacade
	Ratio       RatioRepositoryFacade
	Reporting   ReportingRepository
}

// UnitOfWork runs fn inside a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
	// WithinSnapshot is WithinTx with every read in fn seeing the same
	// committed state of the database.
	WithinSnapshot(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
