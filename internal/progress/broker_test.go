package progress

import (
	"path/filepath"
	"testing"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	return NewBroker(logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "progress.log")))
}

func TestBrokerDeliversInPublishOrder(t *testing.T) {
	b := newTestBroker(t)
	id := uuid.New()

	var got []dto.ProgressEvent
	unsub := b.Subscribe(id,
		func(ev dto.ProgressEvent) { got = append(got, ev) },
		nil,
	)
	defer unsub()

	for i := 1; i <= 5; i++ {
		b.Publish(dto.ProgressEvent{Id: id, Stage: "render", Current: i, Total: 5})
	}

	require.Len(t, got, 5)
	for i, ev := range got {
		assert.Equal(t, i+1, ev.Current)
	}
}

func TestBrokerCompleteIsTerminal(t *testing.T) {
	b := newTestBroker(t)
	id := uuid.New()

	var progressCount, completeCount int
	b.Subscribe(id,
		func(dto.ProgressEvent) { progressCount++ },
		func(dto.CompletionEvent) { completeCount++ },
	)

	b.Publish(dto.ProgressEvent{Id: id, Current: 1})
	b.Complete(dto.CompletionEvent{Id: id, Success: true})

	// Events after the terminal notification are dropped, and a second
	// complete call delivers nothing.
	b.Publish(dto.ProgressEvent{Id: id, Current: 2})
	b.Complete(dto.CompletionEvent{Id: id, Success: false, Error: "late"})

	assert.Equal(t, 1, progressCount)
	assert.Equal(t, 1, completeCount)
}

func TestBrokerIgnoresLateSubscriber(t *testing.T) {
	b := newTestBroker(t)
	id := uuid.New()

	b.Complete(dto.CompletionEvent{Id: id, Success: false, Error: "model unavailable"})

	var fired bool
	unsub := b.Subscribe(id, func(dto.ProgressEvent) { fired = true }, func(dto.CompletionEvent) { fired = true })
	unsub()

	// A subscriber attaching after the terminal event gets nothing and must
	// read the outcome from the content store.
	assert.False(t, fired)
	assert.Equal(t, 0, b.SubscriberCount(id))
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := newTestBroker(t)
	id := uuid.New()

	var count int
	unsub := b.Subscribe(id, func(dto.ProgressEvent) { count++ }, nil)

	b.Publish(dto.ProgressEvent{Id: id, Current: 1})
	unsub()
	b.Publish(dto.ProgressEvent{Id: id, Current: 2})

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, b.SubscriberCount(id))
}

func TestBrokerIsolatesJobs(t *testing.T) {
	b := newTestBroker(t)
	first, second := uuid.New(), uuid.New()

	var firstEvents, secondEvents int
	b.Subscribe(first, func(dto.ProgressEvent) { firstEvents++ }, nil)
	b.Subscribe(second, func(dto.ProgressEvent) { secondEvents++ }, nil)

	b.Publish(dto.ProgressEvent{Id: first, Current: 1})
	b.Publish(dto.ProgressEvent{Id: first, Current: 2})
	b.Publish(dto.ProgressEvent{Id: second, Current: 1})

	assert.Equal(t, 2, firstEvents)
	assert.Equal(t, 1, secondEvents)
}

func TestBrokerForgetAllowsResubscribe(t *testing.T) {
	b := newTestBroker(t)
	id := uuid.New()

	b.Complete(dto.CompletionEvent{Id: id, Success: true})
	b.Forget(id)

	b.Subscribe(id, nil, func(dto.CompletionEvent) {})

	// After Forget the job is unknown again and the subscription sticks.
	assert.Equal(t, 1, b.SubscriberCount(id))
}
