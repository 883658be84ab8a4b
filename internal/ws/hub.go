package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ChatBot/bot/chat"
	"ChatBot/entity"
	"ChatBot/internal/lib/sl"

	"github.com/google/uuid"
)

// ChannelID identifies activities that arrive over the web chat socket.
const ChannelID = "webchat"

// TurnHandler processes one inbound activity.
type TurnHandler interface {
	OnTurn(ctx context.Context, activity *entity.Activity, connector chat.Connector) ([]*entity.Activity, error)
}

// Event represents a WebSocket event sent to web chat clients.
type Event struct {
	Type string           `json:"type"` // "activity", "inbound"
	Data *entity.Activity `json:"data"`
}

var errHubStopped = errors.New("hub stopped")

type envelope struct {
	conversationID string
	data           []byte
}

// Hub maintains the web chat clients, grouped by conversation, and pushes
// outbound activities to the clients of the conversation they address.
type Hub struct {
	clients     map[string]map[*Client]bool
	broadcast   chan envelope
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	mu          sync.RWMutex
	handler     TurnHandler
	botAccount  entity.ChannelAccount
	turnTimeout time.Duration
	log         *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		broadcast:   make(chan envelope, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		botAccount:  entity.ChannelAccount{ID: "bot", Name: "ChatBot", Role: "bot"},
		turnTimeout: 30 * time.Second,
		log:         log.With(sl.Module("ws")),
	}
}

// SetHandler sets the handler for messages typed into the web chat.
func (h *Hub) SetHandler(handler TurnHandler) {
	h.handler = handler
}

// Run starts the hub's event loop until ctx is done. Should be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.conversationID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.conversationID] = set
			}
			set[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case env := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[env.conversationID] {
				select {
				case client.send <- env.data:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops a client; the caller holds the lock.
func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.conversationID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.conversationID)
	}
}

// subscribers returns the number of clients connected to a conversation.
func (h *Hub) subscribers(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[conversationID])
}

// Send pushes an outbound activity to the clients of its conversation.
func (h *Hub) Send(ctx context.Context, activity *entity.Activity) error {
	return h.publish(ctx, "activity", activity)
}

// OnActivity echoes inbound activities to the other clients of the conversation.
func (h *Hub) OnActivity(activity *entity.Activity) {
	if activity.ChannelID != ChannelID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.publish(ctx, "inbound", activity); err != nil {
		h.log.Debug("inbound echo dropped", sl.Err(err))
	}
}

func (h *Hub) publish(ctx context.Context, eventType string, activity *entity.Activity) error {
	data, err := json.Marshal(&Event{Type: eventType, Data: activity})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- envelope{conversationID: activity.Conversation.ID, data: data}:
		return nil
	case <-h.done:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// clientEvent represents an incoming WebSocket message from a web chat client.
type clientEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Value any    `json:"value,omitempty"`
}

// HandleClientMessage parses a message typed by the client and runs it as a turn.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}
	if event.Type != entity.ActivityMessage {
		return
	}
	if event.Text == "" && event.Value == nil {
		return
	}

	activity := h.newActivity(client, entity.ActivityMessage)
	activity.Text = event.Text
	activity.Value = event.Value
	h.turn(activity)
}

// join announces a new client to the bot the way channels report added members.
func (h *Hub) join(client *Client) {
	activity := h.newActivity(client, entity.ActivityConversationUpdate)
	activity.MembersAdded = []entity.ChannelAccount{activity.From}
	h.turn(activity)
}

func (h *Hub) newActivity(client *Client, activityType string) *entity.Activity {
	return &entity.Activity{
		Type:         activityType,
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		ChannelID:    ChannelID,
		From:         entity.ChannelAccount{ID: client.userID, Role: "user"},
		Recipient:    h.botAccount,
		Conversation: entity.ConversationAccount{ID: client.conversationID},
	}
}

func (h *Hub) turn(activity *entity.Activity) {
	if h.handler == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.turnTimeout)
	defer cancel()

	if _, err := h.handler.OnTurn(ctx, activity, h); err != nil {
		h.log.Error("web chat turn",
			slog.String("conversation_id", activity.Conversation.ID),
			sl.Err(err),
		)
	}
}
