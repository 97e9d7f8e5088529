package unitofwork

import "context"

// RepositoryFactory opens units of work; the gorm implementation binds them
// to a database handle, the memory one to in-process maps for tests.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
