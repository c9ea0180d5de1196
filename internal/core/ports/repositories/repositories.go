package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
// The embedded TxRepositories run outside any transaction; use UnitOfWork
// for atomic units.
type RepositoryProvider struct {
	TxRepositories
	UnitOfWork UnitOfWork
	AuditLog   AuditLogRepositoryFacade
}
