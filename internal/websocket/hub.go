package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"notebook-studio-be/internal/dto"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/progress"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "content_progress_events"

// Hub fans generation progress out to websocket clients. Clients are grouped
// by the content id they watch; the hub holds one broker subscription per
// watched id, attached when the first client arrives and detached when the
// last one leaves. With Redis configured, events are also relayed to other
// instances so a client can watch a job running elsewhere.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	// One detach function per content id with local watchers.
	watches map[uuid.UUID]func()

	mu sync.RWMutex

	// Distinguishes our own relayed events from other instances' on the
	// cluster channel.
	instanceId string

	broker *progress.Broker
	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(broker *progress.Broker, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		watches:    make(map[uuid.UUID]func()),
		instanceId: uuid.NewString(),
		broker:     broker,
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ContentID] = append(h.clients[client.ContentID], client)
			first := len(h.clients[client.ContentID]) == 1
			h.mu.Unlock()

			if first {
				h.watch(client.ContentID)
			}
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"content_id": client.ContentID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ContentID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ContentID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ContentID]) == 0 {
					delete(h.clients, client.ContentID)
					if detach, ok := h.watches[client.ContentID]; ok {
						detach()
						delete(h.watches, client.ContentID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// watch attaches the hub to the broker stream for one content id. The detach
// function is stored so the last departing client releases the subscription.
func (h *Hub) watch(contentId uuid.UUID) {
	detach := h.broker.Subscribe(contentId,
		func(ev dto.ProgressEvent) {
			h.deliver(contentId, envelope("progress", ev), false)
		},
		func(ev dto.CompletionEvent) {
			h.deliver(contentId, envelope("complete", ev), true)
		},
	)

	h.mu.Lock()
	h.watches[contentId] = detach
	h.mu.Unlock()
}

func envelope(eventType string, data interface{}) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})
	return payload
}

// deliver pushes a serialized event to every local watcher of the content and
// relays it to the cluster channel. Terminal events close the connection once
// written.
func (h *Hub) deliver(contentId uuid.UUID, data []byte, terminal bool) {
	h.sendLocal(contentId, data, terminal)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin":            h.instanceId,
			"target_content_id": contentId.String(),
			"terminal":          terminal,
			"message":           data,
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) sendLocal(contentId uuid.UUID, data []byte, terminal bool) {
	// The whole loop runs under the read lock: the unregister path closes
	// Send under the write lock, so a disconnecting client can never have
	// its channel closed while a send is in flight. Sends are non-blocking,
	// so the lock is held only briefly.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[contentId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"content_id": contentId})
			go func(c *Client) { h.unregister <- c }(client)
			continue
		}
		if terminal {
			client.CloseAfterDrain()
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin          string          `json:"origin"`
			TargetContentID string          `json:"target_content_id"`
			Terminal        bool            `json:"terminal"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Malformed cluster event", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instanceId {
			// Already delivered locally before the relay was published.
			continue
		}

		contentId, err := uuid.Parse(payload.TargetContentID)
		if err != nil {
			continue
		}

		h.sendLocal(contentId, payload.Message, payload.Terminal)
	}
}
