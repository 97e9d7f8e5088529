package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/repository/contract"
	"notebook-studio-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ContentRepository is an in-memory GeneratedContentRepository. It backs the
// service tests and interprets the small set of specifications the services
// actually use.
type ContentRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.GeneratedContent
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{
		items: make(map[uuid.UUID]*entity.GeneratedContent),
	}
}

var _ contract.GeneratedContentRepository = (*ContentRepository)(nil)

func (r *ContentRepository) Create(ctx context.Context, content *entity.GeneratedContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if content.Id == uuid.Nil {
		content.Id = uuid.New()
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now()
	}
	clone := *content
	r.items[content.Id] = &clone
	return nil
}

func (r *ContentRepository) Update(ctx context.Context, content *entity.GeneratedContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	content.UpdatedAt = &now
	clone := *content
	r.items[content.Id] = &clone
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *ContentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if matchContent(c, specs) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *ContentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entity.GeneratedContent, 0)
	for _, c := range r.items {
		if matchContent(c, specs) {
			clone := *c
			result = append(result, &clone)
		}
	}
	if hasNewestFirst(specs) {
		sort.Slice(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result, nil
}

func (r *ContentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func matchContent(c *entity.GeneratedContent, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByNotebookID:
			if c.NotebookId != s.NotebookID {
				return false
			}
		case specification.ByStatus:
			if string(c.Status) != s.Status {
				return false
			}
		case specification.ByType:
			if string(c.Type) != s.Type {
				return false
			}
		case specification.NewestFirst:
			// ordering, not filtering
		}
	}
	return true
}

func hasNewestFirst(specs []specification.Specification) bool {
	for _, spec := range specs {
		if _, ok := spec.(specification.NewestFirst); ok {
			return true
		}
	}
	return false
}
