package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/pkg/apperror"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/repository/contract"
	"notebook-studio-be/internal/repository/memory"
	"notebook-studio-be/internal/repository/specification"
	"notebook-studio-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 60 * time.Millisecond

// countingContentRepository records how many writes the debounce lets through
// to the store.
type countingContentRepository struct {
	contract.GeneratedContentRepository
	updates atomic.Int64
}

func (r *countingContentRepository) Update(ctx context.Context, content *entity.GeneratedContent) error {
	r.updates.Add(1)
	return r.GeneratedContentRepository.Update(ctx, content)
}

type countingFactory struct {
	unitofwork.RepositoryFactory
	contents *countingContentRepository
}

func (f *countingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &countingUnitOfWork{UnitOfWork: f.RepositoryFactory.NewUnitOfWork(ctx), contents: f.contents}
}

type countingUnitOfWork struct {
	unitofwork.UnitOfWork
	contents *countingContentRepository
}

func (u *countingUnitOfWork) GeneratedContentRepository() contract.GeneratedContentRepository {
	return u.contents
}

type overlayFixture struct {
	factory *memory.RepositoryFactory
	decks   *memory.DeckCache
	writes  *countingContentRepository
	service IOverlayService
	content *entity.GeneratedContent
}

func newOverlayFixture(t *testing.T) *overlayFixture {
	t.Helper()

	factory := memory.NewRepositoryFactory()
	decks := memory.NewDeckCache()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "overlay.log"))

	deck := entity.SlideDeck{Slides: []entity.Slide{
		{
			SlideNumber: 1,
			ImagePath:   "slide_1.png",
			Elements: []entity.SlideTextElement{
				{Id: "el-1", Type: entity.ElementTypeTitle, Content: "Introduction", X: 5, Y: 8, Width: 90,
					Style: entity.ElementStyle{FontSize: 32, Color: "#1a1a2e", Align: "center"}},
				{Id: "el-2", Type: entity.ElementTypeBullet, Content: "First point", X: 8, Y: 28, Width: 84,
					Style: entity.ElementStyle{FontSize: 18, Color: "#1a1a2e", Align: "left"}},
			},
		},
		{SlideNumber: 2, ImagePath: "slide_2.png"},
	}}
	for i := range deck.Slides {
		syncMirror(&deck.Slides[i])
	}
	data, err := json.Marshal(&deck)
	require.NoError(t, err)

	content := &entity.GeneratedContent{
		Id:         uuid.New(),
		NotebookId: uuid.New(),
		Type:       entity.ContentTypeImageSlides,
		Title:      "Slide Deck",
		Status:     entity.ContentStatusComplete,
		Data:       data,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, factory.Contents.Create(context.Background(), content))

	writes := &countingContentRepository{GeneratedContentRepository: factory.Contents}

	return &overlayFixture{
		factory: factory,
		decks:   decks,
		writes:  writes,
		service: NewOverlayService(&countingFactory{RepositoryFactory: factory, contents: writes}, decks, log, testDebounce),
		content: content,
	}
}

func (f *overlayFixture) storedDeck(t *testing.T) *entity.SlideDeck {
	t.Helper()
	content, err := f.factory.Contents.FindOne(context.Background(), specification.ByID{ID: f.content.Id})
	require.NoError(t, err)
	require.NotNil(t, content)
	deck := &entity.SlideDeck{}
	require.NoError(t, json.Unmarshal(content.Data, deck))
	return deck
}

func strPtr(s string) *string { return &s }

func f64Ptr(v float64) *float64 { return &v }

func TestUpdateElementAppliesImmediatelyPersistsLater(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	err := f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
		ContentId:   f.content.Id,
		SlideNumber: 1,
		ElementId:   "el-1",
		X:           f64Ptr(12.5),
		Y:           f64Ptr(20),
	})
	require.NoError(t, err)

	// The working copy moved right away.
	deck, found := f.decks.Get(f.content.Id)
	require.True(t, found)
	assert.Equal(t, 12.5, deck.Slides[0].Elements[0].X)

	// The store still has the original position inside the debounce window.
	assert.Equal(t, 5.0, f.storedDeck(t).Slides[0].Elements[0].X)

	// After the quiet period the edit lands.
	assert.Eventually(t, func() bool {
		return f.storedDeck(t).Slides[0].Elements[0].X == 12.5
	}, time.Second, 10*time.Millisecond)
}

func TestRapidEditsCoalesceIntoOnePersist(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		err := f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
			ContentId:   f.content.Id,
			SlideNumber: 1,
			ElementId:   "el-1",
			X:           f64Ptr(float64(i)),
		})
		require.NoError(t, err)
	}

	// Only the final position survives, through a single write.
	assert.Eventually(t, func() bool {
		return f.storedDeck(t).Slides[0].Elements[0].X == 19.0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), f.writes.updates.Load())
}

func TestContentEditRebuildsMirror(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	err := f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
		ContentId:   f.content.Id,
		SlideNumber: 1,
		ElementId:   "el-1",
		Content:     strPtr("<b>Deep Dive</b>"),
	})
	require.NoError(t, err)

	deck, _ := f.decks.Get(f.content.Id)
	assert.Equal(t, "Deep Dive", deck.Slides[0].Title)
	assert.Equal(t, []string{"First point"}, deck.Slides[0].Bullets)
}

func TestAddAndDeleteElement(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	res, err := f.service.AddElement(ctx, &dto.AddElementRequest{
		ContentId:   f.content.Id,
		SlideNumber: 2,
		Type:        string(entity.ElementTypeBullet),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Id)

	deck, _ := f.decks.Get(f.content.Id)
	slide := deck.Slide(2)
	require.Len(t, slide.Elements, 1)
	assert.Equal(t, entity.ElementTypeBullet, slide.Elements[0].Type)
	assert.Equal(t, []string{"New bullet"}, slide.Bullets)

	require.NoError(t, f.service.DeleteElement(ctx, f.content.Id, 2, res.Id))
	deck, _ = f.decks.Get(f.content.Id)
	assert.Empty(t, deck.Slide(2).Elements)
	assert.Empty(t, deck.Slide(2).Bullets)
}

func TestDeleteLastElementLeavesSlideIntact(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.DeleteElement(ctx, f.content.Id, 1, "el-1"))
	require.NoError(t, f.service.DeleteElement(ctx, f.content.Id, 1, "el-2"))

	_, err := f.service.Flush(ctx, f.content.Id)
	require.NoError(t, err)

	stored := f.storedDeck(t)
	assert.Empty(t, stored.Slides[0].Elements)
	assert.Empty(t, stored.Slides[0].Title)
	assert.Equal(t, "slide_1.png", stored.Slides[0].ImagePath)
}

func TestFlushPersistsWithoutWaiting(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	err := f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
		ContentId:   f.content.Id,
		SlideNumber: 1,
		ElementId:   "el-2",
		Content:     strPtr("Revised point"),
	})
	require.NoError(t, err)

	res, err := f.service.Flush(ctx, f.content.Id)
	require.NoError(t, err)
	assert.True(t, res.Flushed)

	assert.Equal(t, "Revised point", f.storedDeck(t).Slides[0].Elements[1].Content)

	// A second flush has nothing to write.
	res, err = f.service.Flush(ctx, f.content.Id)
	require.NoError(t, err)
	assert.False(t, res.Flushed)
}

func TestFlushAllWritesEveryDirtyDeck(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	err := f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
		ContentId:   f.content.Id,
		SlideNumber: 1,
		ElementId:   "el-1",
		Content:     strPtr("Shutdown edit"),
	})
	require.NoError(t, err)

	f.service.FlushAll(ctx)

	assert.Equal(t, "Shutdown edit", f.storedDeck(t).Slides[0].Elements[0].Content)
}

func TestOverlayRejectsWrongContent(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	quiz := &entity.GeneratedContent{
		Id: uuid.New(), NotebookId: f.content.NotebookId,
		Type: entity.ContentTypeQuiz, Status: entity.ContentStatusComplete,
		Data: json.RawMessage(`{}`), CreatedAt: time.Now(),
	}
	require.NoError(t, f.factory.Contents.Create(ctx, quiz))

	generating := &entity.GeneratedContent{
		Id: uuid.New(), NotebookId: f.content.NotebookId,
		Type: entity.ContentTypeImageSlides, Status: entity.ContentStatusGenerating,
		Data: json.RawMessage(`{}`), CreatedAt: time.Now(),
	}
	require.NoError(t, f.factory.Contents.Create(ctx, generating))

	req := func(id uuid.UUID) *dto.UpdateElementRequest {
		return &dto.UpdateElementRequest{ContentId: id, SlideNumber: 1, ElementId: "el-1", X: f64Ptr(1)}
	}

	assert.ErrorIs(t, f.service.UpdateElement(ctx, req(quiz.Id)), apperror.ErrValidation)
	assert.ErrorIs(t, f.service.UpdateElement(ctx, req(generating.Id)), apperror.ErrValidation)
	assert.ErrorIs(t, f.service.UpdateElement(ctx, req(uuid.New())), apperror.ErrNotFound)
}

func TestOverlayMissingSlideAndElement(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	err := f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
		ContentId: f.content.Id, SlideNumber: 9, ElementId: "el-1", X: f64Ptr(1),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
		ContentId: f.content.Id, SlideNumber: 1, ElementId: "el-404", X: f64Ptr(1),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestEvictDiscardsPendingEdits(t *testing.T) {
	f := newOverlayFixture(t)
	ctx := context.Background()

	err := f.service.UpdateElement(ctx, &dto.UpdateElementRequest{
		ContentId: f.content.Id, SlideNumber: 1, ElementId: "el-1", X: f64Ptr(99),
	})
	require.NoError(t, err)

	f.service.Evict(f.content.Id)

	time.Sleep(2 * testDebounce)
	assert.Equal(t, 5.0, f.storedDeck(t).Slides[0].Elements[0].X)
}
