package implementation

import (
	"context"
	"errors"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/mapper"
	"notebook-studio-be/internal/model"
	"notebook-studio-be/internal/repository/contract"
	"notebook-studio-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeneratedContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GeneratedContentMapper
}

func NewGeneratedContentRepository(db *gorm.DB) contract.GeneratedContentRepository {
	return &GeneratedContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewGeneratedContentMapper(),
	}
}

func (r *GeneratedContentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GeneratedContentRepositoryImpl) Create(ctx context.Context, content *entity.GeneratedContent) error {
	m := r.mapper.ToModel(content)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*content = *r.mapper.ToEntity(m)
	return nil
}

func (r *GeneratedContentRepositoryImpl) Update(ctx context.Context, content *entity.GeneratedContent) error {
	m := r.mapper.ToModel(content)
	// Save updates all fields including zero values when the primary key is set.
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*content = *r.mapper.ToEntity(m)
	return nil
}

func (r *GeneratedContentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GeneratedContent{}, id).Error
}

func (r *GeneratedContentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedContent, error) {
	var m model.GeneratedContent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GeneratedContentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedContent, error) {
	var models []*model.GeneratedContent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *GeneratedContentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.GeneratedContent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
