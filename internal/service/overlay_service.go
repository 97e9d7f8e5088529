package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/pkg/apperror"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/repository/memory"
	"notebook-studio-be/internal/repository/specification"
	"notebook-studio-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IOverlayService interface {
	UpdateElement(ctx context.Context, request *dto.UpdateElementRequest) error
	AddElement(ctx context.Context, request *dto.AddElementRequest) (*dto.ElementResponse, error)
	DeleteElement(ctx context.Context, contentId uuid.UUID, slideNumber int, elementId string) error
	Flush(ctx context.Context, contentId uuid.UUID) (*dto.FlushResponse, error)
	FlushAll(ctx context.Context)
	Evict(contentId uuid.UUID)
}

type slideKey struct {
	contentId   uuid.UUID
	slideNumber int
}

// overlayService edits slide deck overlays in memory and persists them after
// a quiet period. Every mutation is applied to the cached deck immediately;
// the database write is debounced per slide so a drag producing dozens of
// position updates costs one UPDATE.
type overlayService struct {
	uowFactory unitofwork.RepositoryFactory
	decks      *memory.DeckCache
	logger     logger.ILogger
	debounce   time.Duration

	mu     sync.Mutex
	timers map[slideKey]*time.Timer
	dirty  map[uuid.UUID]bool
}

func NewOverlayService(
	uowFactory unitofwork.RepositoryFactory,
	decks *memory.DeckCache,
	log logger.ILogger,
	debounce time.Duration,
) IOverlayService {
	return &overlayService{
		uowFactory: uowFactory,
		decks:      decks,
		logger:     log,
		debounce:   debounce,
		timers:     make(map[slideKey]*time.Timer),
		dirty:      make(map[uuid.UUID]bool),
	}
}

// loadDeck returns the working copy for the content, reading it out of the
// record payload on a cache miss. Only completed image-slides records are
// editable.
func (s *overlayService) loadDeck(ctx context.Context, contentId uuid.UUID) (*entity.SlideDeck, error) {
	if deck, found := s.decks.Get(contentId); found {
		return deck, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	content, err := uow.GeneratedContentRepository().FindOne(ctx, specification.ByID{ID: contentId})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, apperror.NotFound("content not found")
	}
	if content.Type != entity.ContentTypeImageSlides {
		return nil, apperror.Validation("content is not a slide deck")
	}
	if content.Status != entity.ContentStatusComplete {
		return nil, apperror.Validation("slide deck is not ready for editing")
	}

	deck := &entity.SlideDeck{}
	if err := json.Unmarshal(content.Data, deck); err != nil {
		return nil, fmt.Errorf("decode slide deck: %w", err)
	}

	s.decks.Save(contentId, deck)
	return deck, nil
}

func (s *overlayService) UpdateElement(ctx context.Context, request *dto.UpdateElementRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, err := s.loadDeck(ctx, request.ContentId)
	if err != nil {
		return err
	}

	slide := deck.Slide(request.SlideNumber)
	if slide == nil {
		return apperror.NotFound("slide not found")
	}

	element := findElement(slide, request.ElementId)
	if element == nil {
		return apperror.NotFound("element not found")
	}

	mirrorStale := false
	if request.Content != nil {
		element.Content = *request.Content
		mirrorStale = element.Type != entity.ElementTypeText
	}
	if request.X != nil {
		element.X = *request.X
	}
	if request.Y != nil {
		element.Y = *request.Y
	}
	if request.Width != nil {
		element.Width = *request.Width
	}
	if request.FontSize != nil {
		element.Style.FontSize = *request.FontSize
	}
	if request.Color != nil {
		element.Style.Color = *request.Color
	}
	if request.Align != nil {
		element.Style.Align = *request.Align
	}

	if mirrorStale {
		syncMirror(slide)
	}

	s.decks.Save(request.ContentId, deck)
	s.markDirty(request.ContentId, request.SlideNumber)
	return nil
}

func (s *overlayService) AddElement(ctx context.Context, request *dto.AddElementRequest) (*dto.ElementResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, err := s.loadDeck(ctx, request.ContentId)
	if err != nil {
		return nil, err
	}

	slide := deck.Slide(request.SlideNumber)
	if slide == nil {
		return nil, apperror.NotFound("slide not found")
	}

	element := newElement(request.Type)
	slide.Elements = append(slide.Elements, element)
	syncMirror(slide)

	s.decks.Save(request.ContentId, deck)
	s.markDirty(request.ContentId, request.SlideNumber)

	return &dto.ElementResponse{
		Id:          element.Id,
		SlideNumber: request.SlideNumber,
	}, nil
}

func (s *overlayService) DeleteElement(ctx context.Context, contentId uuid.UUID, slideNumber int, elementId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, err := s.loadDeck(ctx, contentId)
	if err != nil {
		return err
	}

	slide := deck.Slide(slideNumber)
	if slide == nil {
		return apperror.NotFound("slide not found")
	}

	kept := slide.Elements[:0]
	found := false
	for _, el := range slide.Elements {
		if el.Id == elementId {
			found = true
			continue
		}
		kept = append(kept, el)
	}
	if !found {
		return apperror.NotFound("element not found")
	}
	slide.Elements = kept
	syncMirror(slide)

	s.decks.Save(contentId, deck)
	s.markDirty(contentId, slideNumber)
	return nil
}

// Flush persists any pending edits immediately and cancels outstanding
// debounce timers for the content.
func (s *overlayService) Flush(ctx context.Context, contentId uuid.UUID) (*dto.FlushResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		if key.contentId == contentId {
			timer.Stop()
			delete(s.timers, key)
		}
	}

	if !s.dirty[contentId] {
		return &dto.FlushResponse{Id: contentId, Flushed: false}, nil
	}

	if err := s.persistLocked(ctx, contentId); err != nil {
		return nil, err
	}
	return &dto.FlushResponse{Id: contentId, Flushed: true}, nil
}

// FlushAll is the shutdown path: every dirty deck is written out before the
// process exits.
func (s *overlayService) FlushAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}

	for contentId, isDirty := range s.dirty {
		if !isDirty {
			continue
		}
		if err := s.persistLocked(ctx, contentId); err != nil {
			s.logger.Error("OverlayService", "Failed to flush deck on shutdown", map[string]interface{}{
				"content_id": contentId,
				"error":      err.Error(),
			})
		}
	}
}

// Evict drops the working copy and any pending timers, used when the content
// is deleted. Unpersisted edits are discarded with it.
func (s *overlayService) Evict(contentId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		if key.contentId == contentId {
			timer.Stop()
			delete(s.timers, key)
		}
	}
	delete(s.dirty, contentId)
	s.decks.Delete(contentId)
}

// markDirty arms (or re-arms) the debounce timer for the slide. Must be
// called with mu held.
func (s *overlayService) markDirty(contentId uuid.UUID, slideNumber int) {
	s.dirty[contentId] = true

	key := slideKey{contentId: contentId, slideNumber: slideNumber}
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}
	s.timers[key] = time.AfterFunc(s.debounce, func() {
		s.onDebounceExpired(key)
	})
}

func (s *overlayService) onDebounceExpired(key slideKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.timers, key)
	if !s.dirty[key.contentId] {
		return
	}

	if err := s.persistLocked(context.Background(), key.contentId); err != nil {
		// Keep the dirty flag so the next timer or an explicit flush retries.
		s.logger.Error("OverlayService", "Failed to persist deck edits", map[string]interface{}{
			"content_id": key.contentId,
			"error":      err.Error(),
		})
	}
}

// persistLocked writes the whole working deck back into the record payload.
// Clears the dirty flag only on success. Must be called with mu held.
func (s *overlayService) persistLocked(ctx context.Context, contentId uuid.UUID) error {
	deck, found := s.decks.Get(contentId)
	if !found {
		// Cache expired with edits pending; nothing left to write.
		delete(s.dirty, contentId)
		return nil
	}

	data, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("encode slide deck: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	content, err := uow.GeneratedContentRepository().FindOne(ctx, specification.ByID{ID: contentId})
	if err != nil {
		return err
	}
	if content == nil {
		delete(s.dirty, contentId)
		return nil
	}

	now := time.Now()
	content.Data = data
	content.UpdatedAt = &now
	if err := uow.GeneratedContentRepository().Update(ctx, content); err != nil {
		return err
	}

	delete(s.dirty, contentId)
	return nil
}

func findElement(slide *entity.Slide, elementId string) *entity.SlideTextElement {
	for i := range slide.Elements {
		if slide.Elements[i].Id == elementId {
			return &slide.Elements[i]
		}
	}
	return nil
}

// newElement builds a freshly added element with sensible defaults so it is
// visible and editable the moment it lands on the slide.
func newElement(elementType string) entity.SlideTextElement {
	t := entity.ElementType(elementType)
	switch t {
	case entity.ElementTypeTitle:
		return entity.SlideTextElement{
			Id:      uuid.NewString(),
			Type:    t,
			Content: "New title",
			X:       5, Y: 8, Width: 90,
			Style: entity.ElementStyle{FontSize: 32, Color: "#1a1a2e", Align: "center"},
		}
	case entity.ElementTypeBullet:
		return entity.SlideTextElement{
			Id:      uuid.NewString(),
			Type:    t,
			Content: "New bullet",
			X:       8, Y: 50, Width: 84,
			Style: entity.ElementStyle{FontSize: 18, Color: "#1a1a2e", Align: "left"},
		}
	default:
		return entity.SlideTextElement{
			Id:      uuid.NewString(),
			Type:    entity.ElementTypeText,
			Content: "New text",
			X:       10, Y: 40, Width: 40,
			Style: entity.ElementStyle{FontSize: 16, Color: "#1a1a2e", Align: "left"},
		}
	}
}
