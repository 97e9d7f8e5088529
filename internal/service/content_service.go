package service

import (
	"context"
	"encoding/json"
	"time"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/pkg/apperror"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/progress"
	"notebook-studio-be/internal/repository/specification"
	"notebook-studio-be/internal/repository/unitofwork"
	"notebook-studio-be/pkg/events"
	pktNats "notebook-studio-be/pkg/nats"
	"notebook-studio-be/pkg/storage"

	"github.com/google/uuid"
)

type IContentService interface {
	Submit(ctx context.Context, req *dto.SubmitContentRequest) (*dto.SubmitContentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowContentResponse, error)
	ListByNotebook(ctx context.Context, notebookId uuid.UUID, filter *dto.ListContentFilter) ([]*dto.ListContentResponse, error)
	Rename(ctx context.Context, req *dto.RenameContentRequest) (*dto.RenameContentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	broker           *progress.Broker
	artifacts        *storage.ArtifactStore
	overlayService   IOverlayService
	natsPub          *pktNats.Publisher
	logger           logger.ILogger
}

func NewContentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	broker *progress.Broker,
	artifacts *storage.ArtifactStore,
	overlayService IOverlayService,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IContentService {
	return &contentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		broker:           broker,
		artifacts:        artifacts,
		overlayService:   overlayService,
		natsPub:          natsPub,
		logger:           log,
	}
}

// Submit validates the request shape, creates the durable record with status
// generating, and hands the job to the runner over the dispatch topic. The
// returned id is backed by a store record before this function returns, so the
// caller can subscribe to progress immediately.
func (c *contentService) Submit(ctx context.Context, req *dto.SubmitContentRequest) (*dto.SubmitContentResponse, error) {
	contentType := entity.ContentType(req.Type)
	if !contentType.Valid() {
		return nil, apperror.UnsupportedType(req.Type)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: req.NotebookId})
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, apperror.NotFound("notebook")
	}

	title := req.Title
	if title == "" {
		title = defaultTitle(contentType)
	}

	content := entity.GeneratedContent{
		Id:         uuid.New(),
		NotebookId: req.NotebookId,
		Type:       contentType,
		Title:      title,
		Status:     entity.ContentStatusGenerating,
		Data:       json.RawMessage(`{}`),
		CreatedAt:  time.Now(),
	}

	if err := uow.GeneratedContentRepository().Create(ctx, &content); err != nil {
		return nil, err
	}

	msg := dto.PublishGenerateContentMessage{
		ContentId:  content.Id,
		NotebookId: content.NotebookId,
		Type:       string(content.Type),
		Options:    req.Options,
	}
	msgJson, _ := json.Marshal(msg)

	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		// The record exists but the runner will never see it. Fail the job
		// terminally instead of surfacing a dispatch error with a dangling
		// generating record.
		c.logger.Error("ContentService", "Failed to dispatch generation job", map[string]interface{}{
			"content_id": content.Id,
			"error":      err.Error(),
		})
		c.failUndispatched(ctx, &content, err.Error())
		return &dto.SubmitContentResponse{Id: content.Id}, nil
	}

	c.logger.Info("ContentService", "Generation job dispatched", map[string]interface{}{
		"content_id":  content.Id,
		"notebook_id": content.NotebookId,
		"type":        content.Type,
	})

	return &dto.SubmitContentResponse{Id: content.Id}, nil
}

func (c *contentService) failUndispatched(ctx context.Context, content *entity.GeneratedContent, reason string) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	content.Status = entity.ContentStatusFailed
	content.Error = reason
	if err := uow.GeneratedContentRepository().Update(ctx, content); err != nil {
		c.logger.Error("ContentService", "Failed to mark undispatched job as failed", map[string]interface{}{
			"content_id": content.Id,
			"error":      err.Error(),
		})
	}
	c.broker.Complete(dto.CompletionEvent{Id: content.Id, Success: false, Error: reason})
}

func (c *contentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowContentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	content, err := uow.GeneratedContentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	return &dto.ShowContentResponse{
		Id:         content.Id,
		NotebookId: content.NotebookId,
		Type:       string(content.Type),
		Title:      content.Title,
		Status:     string(content.Status),
		Data:       content.Data,
		Error:      content.Error,
		CreatedAt:  content.CreatedAt,
		UpdatedAt:  content.UpdatedAt,
	}, nil
}

func (c *contentService) ListByNotebook(ctx context.Context, notebookId uuid.UUID, filter *dto.ListContentFilter) ([]*dto.ListContentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.ByNotebookID{NotebookID: notebookId}}
	if filter != nil {
		if filter.Status != "" {
			if !entity.ContentStatus(filter.Status).Valid() {
				return nil, apperror.Validation("unknown content status")
			}
			specs = append(specs, specification.ByStatus{Status: filter.Status})
		}
		if filter.Type != "" {
			if !entity.ContentType(filter.Type).Valid() {
				return nil, apperror.Validation("unknown content type")
			}
			specs = append(specs, specification.ByType{Type: filter.Type})
		}
	}
	specs = append(specs, specification.NewestFirst{})

	contents, err := uow.GeneratedContentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ListContentResponse, 0, len(contents))
	for _, content := range contents {
		result = append(result, &dto.ListContentResponse{
			Id:        content.Id,
			Type:      string(content.Type),
			Title:     content.Title,
			Status:    string(content.Status),
			Error:     content.Error,
			CreatedAt: content.CreatedAt,
			UpdatedAt: content.UpdatedAt,
		})
	}
	return result, nil
}

// Rename updates the title independent of generation status.
func (c *contentService) Rename(ctx context.Context, req *dto.RenameContentRequest) (*dto.RenameContentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	content, err := uow.GeneratedContentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, apperror.NotFound("content")
	}

	now := time.Now()
	content.Title = req.Title
	content.UpdatedAt = &now

	if err := uow.GeneratedContentRepository().Update(ctx, content); err != nil {
		return nil, err
	}

	return &dto.RenameContentResponse{Id: content.Id}, nil
}

// Delete removes the record and releases the on-disk artifacts it exclusively
// owns.
func (c *contentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	content, err := uow.GeneratedContentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if content == nil {
		return nil
	}

	if err := uow.GeneratedContentRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := c.artifacts.DeleteAll(id); err != nil {
		c.logger.Warn("ContentService", "Failed to remove content artifacts", map[string]interface{}{
			"content_id": id,
			"error":      err.Error(),
		})
	}

	c.broker.Forget(id)
	if c.overlayService != nil {
		c.overlayService.Evict(id)
	}

	if c.natsPub != nil {
		if err := c.natsPub.Publish(ctx, events.ContentDeleted(id, content.NotebookId)); err != nil {
			c.logger.Warn("ContentService", "Failed to publish delete event", map[string]interface{}{
				"content_id": id,
				"error":      err.Error(),
			})
		}
	}

	return nil
}

func defaultTitle(t entity.ContentType) string {
	switch t {
	case entity.ContentTypeAudio:
		return "Audio Overview"
	case entity.ContentTypeImageSlides:
		return "Slide Deck"
	case entity.ContentTypeReport:
		return "Report"
	case entity.ContentTypeFlashcard:
		return "Flashcards"
	case entity.ContentTypeMindmap:
		return "Mind Map"
	case entity.ContentTypeQuiz:
		return "Quiz"
	case entity.ContentTypeDatatable:
		return "Data Table"
	case entity.ContentTypeInfographic:
		return "Infographic"
	case entity.ContentTypeDashboard:
		return "Dashboard"
	case entity.ContentTypeLiteratureReview:
		return "Literature Review"
	case entity.ContentTypeCompetitiveAnalysis:
		return "Competitive Analysis"
	case entity.ContentTypeDiff:
		return "Source Comparison"
	case entity.ContentTypeCitationGraph:
		return "Citation Graph"
	case entity.ContentTypeWhitepaper:
		return "White Paper"
	case entity.ContentTypeHTMLPresentation:
		return "Web Presentation"
	case entity.ContentTypeCanvas:
		return "Canvas"
	default:
		return "Generated Content"
	}
}
