package contract

import (
	"context"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GeneratedContentRepository interface {
	Create(ctx context.Context, content *entity.GeneratedContent) error
	Update(ctx context.Context, content *entity.GeneratedContent) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedContent, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedContent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
