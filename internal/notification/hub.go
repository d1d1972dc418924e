package notification

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// PushMessage is what goes over the wire. Kind "refetch" tells the client to
// reload its notification list; the payload carries no row data, the last
// refetch wins.
type PushMessage struct {
	Kind   string `json:"kind"`
	UserID int64  `json:"-"`
}

// Hub fans push signals out to each user's open sockets. A user can hold
// several connections (tabs), all of them get the signal.
type Hub struct {
	rooms      map[int64]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Push       chan PushMessage
	logger     *slog.Logger
	mu         sync.Mutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Push:       make(chan PushMessage, 64),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.rooms[client.UserID] == nil {
				h.rooms[client.UserID] = make(map[*Client]bool)
			}
			h.rooms[client.UserID][client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", "user_id", client.UserID)

		case client := <-h.Unregister:
			h.remove(client)
			h.logger.Debug("websocket client unregistered", "user_id", client.UserID)

		case msg := <-h.Push:
			payload, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("failed to marshal push message", "error", err)
				continue
			}

			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.rooms[msg.UserID]))
			for client := range h.rooms[msg.UserID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// send buffer full, the client is lagging; drop it
					h.logger.Warn("client send buffer full, unregistering", "user_id", client.UserID)
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[client.UserID][client]; ok {
		delete(h.rooms[client.UserID], client)
		close(client.Send)
		if len(h.rooms[client.UserID]) == 0 {
			delete(h.rooms, client.UserID)
		}
	}
}

// NotifyUser queues a refetch signal for every socket the user has open.
func (h *Hub) NotifyUser(userID int64) {
	select {
	case h.Push <- PushMessage{Kind: "refetch", UserID: userID}:
	default:
		h.logger.Warn("push channel full, dropping signal", "user_id", userID)
	}
}
