package progress

import (
	"sync"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Subscriber receives the event stream of one job. Callbacks are invoked in
// publish order; onComplete at most once, after which no further callbacks
// fire.
type subscriber struct {
	onProgress func(dto.ProgressEvent)
	onComplete func(dto.CompletionEvent)
}

// Broker is a per-job broadcast registry. Delivery is at-most-once per
// subscriber and not persisted: a subscriber attaching after an event was
// published never sees it and must reconcile against the content store.
type Broker struct {
	mu        sync.RWMutex
	subs      map[uuid.UUID][]*subscriber
	completed map[uuid.UUID]struct{}
	logger    logger.ILogger
}

func NewBroker(log logger.ILogger) *Broker {
	return &Broker{
		subs:      make(map[uuid.UUID][]*subscriber),
		completed: make(map[uuid.UUID]struct{}),
		logger:    log,
	}
}

// Subscribe attaches callbacks for a job and returns a detach function.
// Subscribing after the job finished attaches nothing: the caller learns the
// outcome from the content store, not from the event stream.
func (b *Broker) Subscribe(id uuid.UUID, onProgress func(dto.ProgressEvent), onComplete func(dto.CompletionEvent)) func() {
	b.mu.Lock()

	if _, done := b.completed[id]; done {
		b.mu.Unlock()
		return func() {}
	}

	sub := &subscriber{onProgress: onProgress, onComplete: onComplete}
	b.subs[id] = append(b.subs[id], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[id]
		for i, s := range list {
			if s == sub {
				b.subs[id] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(b.subs[id]) == 0 {
			delete(b.subs, id)
		}
	}
}

// Publish delivers a progress event to every currently-attached subscriber.
// Events for a completed job are dropped. A job's events are always published
// from its single runner goroutine, so invoking callbacks outside the lock
// keeps per-job ordering intact.
func (b *Broker) Publish(ev dto.ProgressEvent) {
	b.mu.RLock()
	if _, done := b.completed[ev.Id]; done {
		b.mu.RUnlock()
		b.logger.Warn("ProgressBroker", "Dropping progress event after terminal notification", map[string]interface{}{"content_id": ev.Id})
		return
	}
	snapshot := make([]*subscriber, len(b.subs[ev.Id]))
	copy(snapshot, b.subs[ev.Id])
	b.mu.RUnlock()

	for _, sub := range snapshot {
		if sub.onProgress != nil {
			sub.onProgress(ev)
		}
	}
}

// Complete publishes the terminal notification and tears the job's registry
// entry down. It is idempotent: only the first call per job delivers anything.
func (b *Broker) Complete(ev dto.CompletionEvent) {
	b.mu.Lock()
	if _, done := b.completed[ev.Id]; done {
		b.mu.Unlock()
		return
	}
	b.completed[ev.Id] = struct{}{}
	snapshot := b.subs[ev.Id]
	delete(b.subs, ev.Id)
	b.mu.Unlock()

	for _, sub := range snapshot {
		if sub.onComplete != nil {
			sub.onComplete(ev)
		}
	}
}

// Forget releases the completion marker for a job, typically when its content
// record is deleted.
func (b *Broker) Forget(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.completed, id)
	delete(b.subs, id)
}

// SubscriberCount reports attached subscribers for a job.
func (b *Broker) SubscriberCount(id uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[id])
}
