package mapper

import (
	"encoding/json"
	"time"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GeneratedContentMapper struct{}

func NewGeneratedContentMapper() *GeneratedContentMapper {
	return &GeneratedContentMapper{}
}

func (m *GeneratedContentMapper) ToEntity(c *model.GeneratedContent) *entity.GeneratedContent {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.GeneratedContent{
		Id:         c.Id,
		NotebookId: c.NotebookId,
		Type:       entity.ContentType(c.Type),
		Title:      c.Title,
		Status:     entity.ContentStatus(c.Status),
		Data:       json.RawMessage(c.Data),
		Error:      c.Error,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  c.DeletedAt.Valid,
	}
}

func (m *GeneratedContentMapper) ToModel(c *entity.GeneratedContent) *model.GeneratedContent {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.GeneratedContent{
		Id:         c.Id,
		NotebookId: c.NotebookId,
		Type:       string(c.Type),
		Title:      c.Title,
		Status:     string(c.Status),
		Data:       datatypes.JSON(c.Data),
		Error:      c.Error,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *GeneratedContentMapper) ToEntities(contents []*model.GeneratedContent) []*entity.GeneratedContent {
	entities := make([]*entity.GeneratedContent, len(contents))
	for i, c := range contents {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
