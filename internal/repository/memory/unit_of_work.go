package memory

import (
	"context"

	"notebook-studio-be/internal/repository/contract"
	"notebook-studio-be/internal/repository/unitofwork"
)

// RepositoryFactory wires the in-memory repositories behind the unitofwork
// contracts so services can run without a database in tests.
type RepositoryFactory struct {
	Notebooks *NotebookRepository
	Contents  *ContentRepository
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		Notebooks: NewNotebookRepository(),
		Contents:  NewContentRepository(),
	}
}

var _ unitofwork.RepositoryFactory = (*RepositoryFactory)(nil)

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

type unitOfWork struct {
	factory *RepositoryFactory
}

// Transactions are a no-op for the in-memory store; each repository call is
// independently atomic.
func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) NotebookRepository() contract.NotebookRepository {
	return u.factory.Notebooks
}

func (u *unitOfWork) GeneratedContentRepository() contract.GeneratedContentRepository {
	return u.factory.Contents
}
