package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Alert is the payload delivered to a user's open sockets when trail
// objects are detected nearby.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Hub fans alerts out to every websocket a user has open, and mirrors
// them through redis so instances behind a load balancer stay in sync.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	UserID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

// Notify delivers an alert to the user's connected sockets. It satisfies
// the visit package's notifier contract.
func (h *Hub) Notify(ctx context.Context, userID, title, message string) error {
	payload, err := json.Marshal(Alert{Title: title, Message: message})
	if err != nil {
		return err
	}
	h.Broadcast(ctx, userID, payload)
	return nil
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.UserID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	close(client.Send)
}

// Broadcast delivers the payload to the user's sockets. With redis the
// delivery goes through pub/sub so every instance, including this one,
// picks it up exactly once via the subscription.
func (h *Hub) Broadcast(ctx context.Context, userID string, payload []byte) {
	if h.redis != nil {
		if err := h.redis.Publish(ctx, redisChannel(userID), payload).Err(); err != nil {
			log.Printf("redis publish error: %v", err)
		}
		return
	}

	h.deliver(userID, payload)
}

// deliver fans the payload out to the user's sockets. The read lock is
// held across the sends: Unregister closes Send under the write lock, so
// a send here can never hit a closed channel or a mutating map.
func (h *Hub) deliver(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "alerts:*:nearby")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(userIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(userID string) string {
	return "alerts:" + userID + ":nearby"
}

func userIDFromChannel(ch string) string {
	// alerts:{user}:nearby
	const prefix = "alerts:"
	const suffix = ":nearby"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
