package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/entity"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/progress"
	"notebook-studio-be/internal/repository/specification"
	"notebook-studio-be/internal/repository/unitofwork"
	"notebook-studio-be/pkg/events"
	pktNats "notebook-studio-be/pkg/nats"
	"notebook-studio-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IRunnerService interface {
	Run(ctx context.Context) error
}

// runnerService consumes dispatch messages and executes one generation
// pipeline per job. Jobs run concurrently, bounded by a global semaphore;
// there is no per-notebook serialization. Nothing cancels a running job from
// this layer, but the context is threaded through so pipelines have a seam
// for it.
type runnerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	registry   *pipeline.Registry
	broker     *progress.Broker
	natsPub    *pktNats.Publisher
	logger     logger.ILogger
	sem        chan struct{}
}

func NewRunnerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	registry *pipeline.Registry,
	broker *progress.Broker,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
	maxConcurrent int,
) IRunnerService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &runnerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		registry:   registry,
		broker:     broker,
		natsPub:    natsPub,
		logger:     log,
		sem:        make(chan struct{}, maxConcurrent),
	}
}

func (rs *runnerService) Run(ctx context.Context) error {
	messages, err := rs.pubSub.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			// Delivery is at-most-once by design: a job lost between ack and
			// execution is a generating record that never resolves, which is
			// the documented crash behavior.
			msg.Ack()

			go func(m *message.Message) {
				rs.sem <- struct{}{}
				defer func() { <-rs.sem }()
				rs.process(ctx, m)
			}(msg)
		}
	}()

	return nil
}

func (rs *runnerService) process(ctx context.Context, msg *message.Message) {
	var payload dto.PublishGenerateContentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		rs.logger.Error("RunnerService", "Failed to unmarshal dispatch message", map[string]interface{}{"error": err.Error()})
		return
	}

	uow := rs.uowFactory.NewUnitOfWork(ctx)

	content, err := uow.GeneratedContentRepository().FindOne(ctx, specification.ByID{ID: payload.ContentId})
	if err != nil {
		rs.logger.Error("RunnerService", "Failed to load content for job", map[string]interface{}{
			"content_id": payload.ContentId,
			"error":      err.Error(),
		})
		return
	}
	if content == nil {
		// Deleted between dispatch and pickup.
		rs.logger.Warn("RunnerService", "Dispatched content no longer exists", map[string]interface{}{"content_id": payload.ContentId})
		return
	}
	if content.Status != entity.ContentStatusGenerating {
		// Already terminal; never run a job twice.
		return
	}

	rs.logger.Info("RunnerService", "Starting generation pipeline", map[string]interface{}{
		"content_id": content.Id,
		"type":       content.Type,
	})

	data, runErr := rs.execute(ctx, content, payload.Options)
	if runErr != nil {
		rs.finishFailed(ctx, content, runErr)
		return
	}
	rs.finishComplete(ctx, content, data)
}

// execute runs the pipeline with a panic guard so a misbehaving pipeline can
// never take the host process down.
func (rs *runnerService) execute(ctx context.Context, content *entity.GeneratedContent, options map[string]interface{}) (data json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	p, err := rs.registry.Resolve(content.Type)
	if err != nil {
		return nil, err
	}

	report := func(stage, message string, current, total int) {
		rs.broker.Publish(dto.ProgressEvent{
			Id:      content.Id,
			Stage:   stage,
			Message: message,
			Current: current,
			Total:   total,
		})
	}

	return p.Run(ctx, pipeline.Request{
		ContentId:  content.Id,
		NotebookId: content.NotebookId,
		Type:       content.Type,
		Title:      content.Title,
		Options:    options,
	}, report)
}

// finishComplete persists the payload before the completion notification so a
// subscriber reacting to onComplete reads the final record.
func (rs *runnerService) finishComplete(ctx context.Context, content *entity.GeneratedContent, data json.RawMessage) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	content.Status = entity.ContentStatusComplete
	content.Data = data
	content.UpdatedAt = &now

	if err := uow.GeneratedContentRepository().Update(ctx, content); err != nil {
		// The artifact exists but the record does not reflect it; report the
		// job as failed so the UI does not trust a stale payload.
		rs.logger.Error("RunnerService", "Failed to persist completed payload", map[string]interface{}{
			"content_id": content.Id,
			"error":      err.Error(),
		})
		rs.finishFailed(ctx, content, fmt.Errorf("persist payload: %w", err))
		return
	}

	rs.logger.Info("RunnerService", "Generation pipeline completed", map[string]interface{}{"content_id": content.Id})
	rs.broker.Complete(dto.CompletionEvent{Id: content.Id, Success: true})

	if rs.natsPub != nil {
		if err := rs.natsPub.Publish(ctx, events.ContentCompleted(content.Id, content.NotebookId, string(content.Type))); err != nil {
			rs.logger.Warn("RunnerService", "Failed to publish completion event", map[string]interface{}{
				"content_id": content.Id,
				"error":      err.Error(),
			})
		}
	}
}

// finishFailed keeps whatever partial data the record holds, records the error
// and publishes the terminal notification.
func (rs *runnerService) finishFailed(ctx context.Context, content *entity.GeneratedContent, cause error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	content.Status = entity.ContentStatusFailed
	content.Error = cause.Error()
	content.UpdatedAt = &now

	if err := uow.GeneratedContentRepository().Update(ctx, content); err != nil {
		rs.logger.Error("RunnerService", "Failed to persist failed status", map[string]interface{}{
			"content_id": content.Id,
			"error":      err.Error(),
		})
	}

	rs.logger.Warn("RunnerService", "Generation pipeline failed", map[string]interface{}{
		"content_id": content.Id,
		"error":      cause.Error(),
	})
	rs.broker.Complete(dto.CompletionEvent{Id: content.Id, Success: false, Error: cause.Error()})

	if rs.natsPub != nil {
		if err := rs.natsPub.Publish(ctx, events.ContentFailed(content.Id, content.NotebookId, string(content.Type), cause.Error())); err != nil {
			rs.logger.Warn("RunnerService", "Failed to publish failure event", map[string]interface{}{
				"content_id": content.Id,
				"error":      err.Error(),
			})
		}
	}
}
