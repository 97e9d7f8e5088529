package unitofwork

import (
	"context"

	"notebook-studio-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NotebookRepository() contract.NotebookRepository
	GeneratedContentRepository() contract.GeneratedContentRepository
}
