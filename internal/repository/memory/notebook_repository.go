package memory

import (
	"context"
	"sync"
	"time"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/repository/contract"
	"notebook-studio-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NotebookRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.Notebook
}

func NewNotebookRepository() *NotebookRepository {
	return &NotebookRepository{
		items: make(map[uuid.UUID]*entity.Notebook),
	}
}

var _ contract.NotebookRepository = (*NotebookRepository)(nil)

func (r *NotebookRepository) Create(ctx context.Context, notebook *entity.Notebook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notebook.Id == uuid.Nil {
		notebook.Id = uuid.New()
	}
	if notebook.CreatedAt.IsZero() {
		notebook.CreatedAt = time.Now()
	}
	clone := *notebook
	r.items[notebook.Id] = &clone
	return nil
}

func (r *NotebookRepository) Update(ctx context.Context, notebook *entity.Notebook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *notebook
	r.items[notebook.Id] = &clone
	return nil
}

func (r *NotebookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *NotebookRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notebook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.items {
		if matchNotebook(n, specs) {
			clone := *n
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *NotebookRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notebook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*entity.Notebook, 0)
	for _, n := range r.items {
		if matchNotebook(n, specs) {
			clone := *n
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *NotebookRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func matchNotebook(n *entity.Notebook, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if n.Id != s.ID {
				return false
			}
		}
	}
	return true
}
