package service

import (
	"context"
	"path/filepath"
	"testing"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/pkg/apperror"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/progress"
	"notebook-studio-be/internal/repository/memory"
	"notebook-studio-be/internal/repository/specification"
	"notebook-studio-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotebookFixture(t *testing.T) (*memory.RepositoryFactory, INotebookService, IContentService) {
	t.Helper()

	factory := memory.NewRepositoryFactory()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "notebook.log"))
	broker := progress.NewBroker(log)
	artifacts, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	contentService := NewContentService(factory, &capturingPublisher{}, broker, artifacts, nil, nil, log)
	notebookService := NewNotebookService(factory, contentService, log)
	return factory, notebookService, contentService
}

func TestNotebookCRUD(t *testing.T) {
	_, svc, _ := newNotebookFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateNotebookRequest{Name: "Thesis"})
	require.NoError(t, err)

	shown, err := svc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Thesis", shown.Name)

	_, err = svc.Update(ctx, &dto.UpdateNotebookRequest{Id: created.Id, Name: "Thesis v2"})
	require.NoError(t, err)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Thesis v2", all[0].Name)

	require.NoError(t, svc.Delete(ctx, created.Id))

	_, err = svc.Show(ctx, created.Id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNotebookDeleteCascadesToContent(t *testing.T) {
	factory, svc, contentService := newNotebookFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateNotebookRequest{Name: "Research"})
	require.NoError(t, err)

	first, err := contentService.Submit(ctx, &dto.SubmitContentRequest{
		NotebookId: created.Id, Type: string(entity.ContentTypeQuiz),
	})
	require.NoError(t, err)
	second, err := contentService.Submit(ctx, &dto.SubmitContentRequest{
		NotebookId: created.Id, Type: string(entity.ContentTypeReport),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.Id))

	for _, id := range []uuid.UUID{first.Id, second.Id} {
		content, err := factory.Contents.FindOne(ctx, specification.ByID{ID: id})
		require.NoError(t, err)
		assert.Nil(t, content)
	}
}

func TestNotebookDeleteMissing(t *testing.T) {
	_, svc, _ := newNotebookFixture(t)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
