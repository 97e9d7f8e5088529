package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

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

type capturingPublisher struct {
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type contentFixture struct {
	factory   *memory.RepositoryFactory
	publisher *capturingPublisher
	broker    *progress.Broker
	artifacts *storage.ArtifactStore
	service   IContentService
	notebook  *entity.Notebook
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()

	factory := memory.NewRepositoryFactory()
	publisher := &capturingPublisher{}
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))
	broker := progress.NewBroker(log)
	artifacts, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	notebook := &entity.Notebook{Id: uuid.New(), Name: "Research", CreatedAt: time.Now()}
	require.NoError(t, factory.Notebooks.Create(context.Background(), notebook))

	return &contentFixture{
		factory:   factory,
		publisher: publisher,
		broker:    broker,
		artifacts: artifacts,
		service:   NewContentService(factory, publisher, broker, artifacts, nil, nil, log),
		notebook:  notebook,
	}
}

func TestSubmitCreatesRecordAndDispatches(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	res, err := f.service.Submit(ctx, &dto.SubmitContentRequest{
		NotebookId: f.notebook.Id,
		Type:       string(entity.ContentTypeQuiz),
		Options:    map[string]interface{}{"difficulty": "hard"},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, res.Id)

	// The record is durable before Submit returns.
	content, err := f.factory.Contents.FindOne(ctx, specification.ByID{ID: res.Id})
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, entity.ContentStatusGenerating, content.Status)
	assert.Equal(t, entity.ContentTypeQuiz, content.Type)
	assert.Equal(t, "Quiz", content.Title)

	require.Len(t, f.publisher.payloads, 1)
	var msg dto.PublishGenerateContentMessage
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &msg))
	assert.Equal(t, res.Id, msg.ContentId)
	assert.Equal(t, "hard", msg.Options["difficulty"])
}

func TestSubmitRejectsUnknownType(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.service.Submit(context.Background(), &dto.SubmitContentRequest{
		NotebookId: f.notebook.Id,
		Type:       "hologram",
	})
	assert.ErrorIs(t, err, apperror.ErrUnsupportedType)
	assert.Empty(t, f.publisher.payloads)
}

func TestSubmitRejectsMissingNotebook(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.service.Submit(context.Background(), &dto.SubmitContentRequest{
		NotebookId: uuid.New(),
		Type:       string(entity.ContentTypeReport),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSubmitMarksJobFailedWhenDispatchFails(t *testing.T) {
	f := newContentFixture(t)
	f.publisher.err = errors.New("bus closed")
	ctx := context.Background()

	res, err := f.service.Submit(ctx, &dto.SubmitContentRequest{
		NotebookId: f.notebook.Id,
		Type:       string(entity.ContentTypeFlashcard),
	})
	require.NoError(t, err)

	content, err := f.factory.Contents.FindOne(ctx, specification.ByID{ID: res.Id})
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, entity.ContentStatusFailed, content.Status)
	assert.Contains(t, content.Error, "bus closed")

	// The terminal notification fired before Submit returned, so the stream is
	// already closed and the store is the source of truth.
	var fired bool
	f.broker.Subscribe(res.Id, nil, func(dto.CompletionEvent) { fired = true })
	assert.False(t, fired)
}

func TestRenameUpdatesTitleOnly(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	res, err := f.service.Submit(ctx, &dto.SubmitContentRequest{
		NotebookId: f.notebook.Id,
		Type:       string(entity.ContentTypeMindmap),
	})
	require.NoError(t, err)

	_, err = f.service.Rename(ctx, &dto.RenameContentRequest{Id: res.Id, Title: "Chapter overview"})
	require.NoError(t, err)

	content, err := f.factory.Contents.FindOne(ctx, specification.ByID{ID: res.Id})
	require.NoError(t, err)
	assert.Equal(t, "Chapter overview", content.Title)
	assert.Equal(t, entity.ContentStatusGenerating, content.Status)
}

func TestRenameMissingContent(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.service.Rename(context.Background(), &dto.RenameContentRequest{Id: uuid.New(), Title: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteRemovesRecordAndArtifacts(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	res, err := f.service.Submit(ctx, &dto.SubmitContentRequest{
		NotebookId: f.notebook.Id,
		Type:       string(entity.ContentTypeAudio),
	})
	require.NoError(t, err)

	rel, err := f.artifacts.Write(res.Id, "overview.wav", []byte("RIFF"))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, res.Id))

	content, err := f.factory.Contents.FindOne(ctx, specification.ByID{ID: res.Id})
	require.NoError(t, err)
	assert.Nil(t, content)

	_, err = f.artifacts.Read(rel)
	assert.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newContentFixture(t)

	assert.NoError(t, f.service.Delete(context.Background(), uuid.New()))
}

func TestListByNotebookNewestFirst(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	older := &entity.GeneratedContent{
		Id: uuid.New(), NotebookId: f.notebook.Id,
		Type: entity.ContentTypeReport, Title: "Old", Status: entity.ContentStatusComplete,
		Data: json.RawMessage(`{}`), CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &entity.GeneratedContent{
		Id: uuid.New(), NotebookId: f.notebook.Id,
		Type: entity.ContentTypeQuiz, Title: "New", Status: entity.ContentStatusGenerating,
		Data: json.RawMessage(`{}`), CreatedAt: time.Now(),
	}
	require.NoError(t, f.factory.Contents.Create(ctx, older))
	require.NoError(t, f.factory.Contents.Create(ctx, newer))

	list, err := f.service.ListByNotebook(ctx, f.notebook.Id, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[0].Title)
	assert.Equal(t, "Old", list[1].Title)
}

func TestListByNotebookFilters(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	report := &entity.GeneratedContent{
		Id: uuid.New(), NotebookId: f.notebook.Id,
		Type: entity.ContentTypeReport, Title: "Report", Status: entity.ContentStatusComplete,
		Data: json.RawMessage(`{}`), CreatedAt: time.Now().Add(-time.Hour),
	}
	quiz := &entity.GeneratedContent{
		Id: uuid.New(), NotebookId: f.notebook.Id,
		Type: entity.ContentTypeQuiz, Title: "Quiz", Status: entity.ContentStatusGenerating,
		Data: json.RawMessage(`{}`), CreatedAt: time.Now(),
	}
	require.NoError(t, f.factory.Contents.Create(ctx, report))
	require.NoError(t, f.factory.Contents.Create(ctx, quiz))

	list, err := f.service.ListByNotebook(ctx, f.notebook.Id, &dto.ListContentFilter{Status: "generating"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Quiz", list[0].Title)

	list, err = f.service.ListByNotebook(ctx, f.notebook.Id, &dto.ListContentFilter{Type: "report"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Report", list[0].Title)

	_, err = f.service.ListByNotebook(ctx, f.notebook.Id, &dto.ListContentFilter{Status: "archived"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.service.ListByNotebook(ctx, f.notebook.Id, &dto.ListContentFilter{Type: "newsletter"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
