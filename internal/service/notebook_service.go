package service

import (
	"context"
	"time"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/pkg/apperror"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/repository/specification"
	"notebook-studio-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type INotebookService interface {
	Create(ctx context.Context, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error)
	GetAll(ctx context.Context) ([]*dto.ShowNotebookResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowNotebookResponse, error)
	Update(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type notebookService struct {
	uowFactory     unitofwork.RepositoryFactory
	contentService IContentService
	logger         logger.ILogger
}

func NewNotebookService(uowFactory unitofwork.RepositoryFactory, contentService IContentService, log logger.ILogger) INotebookService {
	return &notebookService{
		uowFactory:     uowFactory,
		contentService: contentService,
		logger:         log,
	}
}

func (n *notebookService) Create(ctx context.Context, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	notebook := entity.Notebook{
		Id:        uuid.New(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := uow.NotebookRepository().Create(ctx, &notebook); err != nil {
		return nil, err
	}

	n.logger.Info("NotebookService", "Notebook created", map[string]interface{}{"notebook_id": notebook.Id})
	return &dto.CreateNotebookResponse{Id: notebook.Id}, nil
}

func (n *notebookService) GetAll(ctx context.Context) ([]*dto.ShowNotebookResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	notebooks, err := uow.NotebookRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ShowNotebookResponse, 0, len(notebooks))
	for _, notebook := range notebooks {
		result = append(result, &dto.ShowNotebookResponse{
			Id:        notebook.Id,
			Name:      notebook.Name,
			CreatedAt: notebook.CreatedAt,
			UpdatedAt: notebook.UpdatedAt,
		})
	}
	return result, nil
}

func (n *notebookService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowNotebookResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, apperror.NotFound("notebook")
	}

	return &dto.ShowNotebookResponse{
		Id:        notebook.Id,
		Name:      notebook.Name,
		CreatedAt: notebook.CreatedAt,
		UpdatedAt: notebook.UpdatedAt,
	}, nil
}

func (n *notebookService) Update(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, apperror.NotFound("notebook")
	}

	now := time.Now()
	notebook.Name = req.Name
	notebook.UpdatedAt = &now

	if err := uow.NotebookRepository().Update(ctx, notebook); err != nil {
		return nil, err
	}
	return &dto.UpdateNotebookResponse{Id: notebook.Id}, nil
}

// Delete removes the notebook and every generated content under it, artifacts
// included.
func (n *notebookService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if notebook == nil {
		return apperror.NotFound("notebook")
	}

	contents, err := uow.GeneratedContentRepository().FindAll(ctx, specification.ByNotebookID{NotebookID: id})
	if err != nil {
		return err
	}
	for _, content := range contents {
		if err := n.contentService.Delete(ctx, content.Id); err != nil {
			n.logger.Error("NotebookService", "Failed to delete notebook content", map[string]interface{}{
				"notebook_id": id,
				"content_id":  content.Id,
				"error":       err.Error(),
			})
			return err
		}
	}

	if err := uow.NotebookRepository().Delete(ctx, id); err != nil {
		return err
	}

	n.logger.Info("NotebookService", "Notebook deleted", map[string]interface{}{
		"notebook_id":      id,
		"contents_removed": len(contents),
	})
	return nil
}
