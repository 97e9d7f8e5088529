package controller

import (
	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/pkg/apperror"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/pkg/serverutils"
	"notebook-studio-be/internal/service"
	internalWS "notebook-studio-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IContentController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UpdateElement(ctx *fiber.Ctx) error
	AddElement(ctx *fiber.Ctx) error
	DeleteElement(ctx *fiber.Ctx) error
	Flush(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
}

type contentController struct {
	contentService service.IContentService
	overlayService service.IOverlayService
	hub            *internalWS.Hub
	logger         logger.ILogger
}

func NewContentController(
	contentService service.IContentService,
	overlayService service.IOverlayService,
	hub *internalWS.Hub,
	log logger.ILogger,
) IContentController {
	return &contentController{
		contentService: contentService,
		overlayService: overlayService,
		hub:            hub,
		logger:         log,
	}
}

func (c *contentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/content/v1")
	h.Post("notebooks/:notebookId", c.Submit)
	h.Get("notebooks/:notebookId", c.List)
	h.Get(":id", c.Show)
	h.Put(":id/rename", c.Rename)
	h.Delete(":id", c.Delete)

	h.Post(":id/slides/:slideNumber/elements", c.AddElement)
	h.Put(":id/slides/:slideNumber/elements/:elementId", c.UpdateElement)
	h.Delete(":id/slides/:slideNumber/elements/:elementId", c.DeleteElement)
	h.Post(":id/flush", c.Flush)

	h.Get(":id/progress", c.Progress)
}

func (c *contentController) Submit(ctx *fiber.Ctx) error {
	notebookId, err := uuid.Parse(ctx.Params("notebookId"))
	if err != nil {
		return apperror.Validation("invalid notebook id")
	}

	var req dto.SubmitContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.NotebookId = notebookId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contentService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Generation started", res))
}

func (c *contentController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid content id")
	}

	res, err := c.contentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return apperror.NotFound("content")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show content", res))
}

func (c *contentController) List(ctx *fiber.Ctx) error {
	notebookId, err := uuid.Parse(ctx.Params("notebookId"))
	if err != nil {
		return apperror.Validation("invalid notebook id")
	}

	filter := &dto.ListContentFilter{
		Status: ctx.Query("status"),
		Type:   ctx.Query("type"),
	}

	res, err := c.contentService.ListByNotebook(ctx.Context(), notebookId, filter)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list content", res))
}

func (c *contentController) Rename(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid content id")
	}

	var req dto.RenameContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contentService.Rename(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename content", res))
}

func (c *contentController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid content id")
	}

	if err := c.contentService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete content", struct{}{}))
}

func (c *contentController) UpdateElement(ctx *fiber.Ctx) error {
	id, slideNumber, err := parseSlideParams(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateElementRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.ContentId = id
	req.SlideNumber = slideNumber
	req.ElementId = ctx.Params("elementId")

	if err := c.overlayService.UpdateElement(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Element updated", struct{}{}))
}

func (c *contentController) AddElement(ctx *fiber.Ctx) error {
	id, slideNumber, err := parseSlideParams(ctx)
	if err != nil {
		return err
	}

	var req dto.AddElementRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.ContentId = id
	req.SlideNumber = slideNumber
	if req.Type == "" {
		req.Type = string(entity.ElementTypeText)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.overlayService.AddElement(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Element added", res))
}

func (c *contentController) DeleteElement(ctx *fiber.Ctx) error {
	id, slideNumber, err := parseSlideParams(ctx)
	if err != nil {
		return err
	}

	if err := c.overlayService.DeleteElement(ctx.Context(), id, slideNumber, ctx.Params("elementId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Element deleted", struct{}{}))
}

func (c *contentController) Flush(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid content id")
	}

	res, err := c.overlayService.Flush(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Edits flushed", res))
}

// Progress upgrades to a websocket streaming the job's progress events. A
// connection for an already-finished job receives the terminal event from the
// store and is closed.
func (c *contentController) Progress(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid content id")
	}

	content, err := c.contentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if content == nil {
		return apperror.NotFound("content")
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	status := content.Status
	errMsg := content.Error

	return websocket.New(func(conn *websocket.Conn) {
		if status != string(entity.ContentStatusGenerating) {
			// Job finished before the client connected; replay the outcome.
			conn.WriteJSON(map[string]interface{}{
				"type": "complete",
				"data": dto.CompletionEvent{
					Id:      id,
					Success: status == string(entity.ContentStatusComplete),
					Error:   errMsg,
				},
			})
			conn.Close()
			return
		}

		c.logger.Info("ContentController", "Progress stream opened", map[string]interface{}{"content_id": id})
		internalWS.ServeWs(c.hub, conn, id)
		c.logger.Info("ContentController", "Progress stream closed", map[string]interface{}{"content_id": id})
	})(ctx)
}

func parseSlideParams(ctx *fiber.Ctx) (uuid.UUID, int, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, 0, apperror.Validation("invalid content id")
	}
	slideNumber, err := ctx.ParamsInt("slideNumber")
	if err != nil {
		return uuid.Nil, 0, apperror.Validation("invalid slide number")
	}
	return id, slideNumber, nil
}
