package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatModel "github.com/upendo-connect/backend/internal/model/chat"
	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/model/paywall"
	"github.com/upendo-connect/backend/internal/pubsub"
	chatService "github.com/upendo-connect/backend/internal/service/chat"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	outboxSize   = 32
)

// ReplyTracker exposes the reply scheduler to live chat connections.
type ReplyTracker interface {
	Pending(matchID string) bool
	Leave(matchID string)
}

// Handler streams one conversation over a WebSocket.
type Handler struct {
	chatSvc  *chatService.Service
	matches  match.Store
	events   pubsub.Subscriber
	replies  ReplyTracker
	upgrader websocket.Upgrader
}

// New creates the WebSocket handler. replies may be nil.
func New(chatSvc *chatService.Service, matches match.Store, events pubsub.Subscriber, replies ReplyTracker) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		matches: matches,
		events:  events,
		replies: replies,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the live chat route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{matchID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	MatchID   string      `json:"matchId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type snapshot struct {
	Match    match.Profile         `json:"match"`
	Messages []chatModel.Message   `json:"messages"`
	Typing   bool                  `json:"typing"`
	Quota    chatModel.QuotaStatus `json:"quota"`
}

type messageEvent struct {
	Message chatModel.Message `json:"message"`
	Typing  bool              `json:"typing"`
}

type paywallEvent struct {
	Visible bool                  `json:"visible"`
	Quota   chatModel.QuotaStatus `json:"quota"`
	Offer   *paywall.Offer        `json:"offer,omitempty"`
}

// connection owns the outbox drained by the single writer goroutine.
type connection struct {
	matchID string
	outbox  chan outgoingMessage
}

// push never blocks: bus handlers run while the chat service holds its
// lock, so a slow client loses events instead of stalling every sender.
func (c *connection) push(kind string, data interface{}) {
	msg := outgoingMessage{
		Type:      kind,
		MatchID:   c.matchID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	select {
	case c.outbox <- msg:
	default:
		log.Printf("[websocket] outbox full, dropping %s for match=%s", kind, c.matchID)
	}
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	profile, ok := h.matches.FindByID(matchID)
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for match: %s", matchID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer h.leave(matchID)

	c := &connection{matchID: matchID, outbox: make(chan outgoingMessage, outboxSize)}
	if err := h.subscribe(ctx, c); err != nil {
		log.Printf("[websocket] subscribe failed for match=%s: %v", matchID, err)
		return
	}

	// Subscribed first so nothing between snapshot and live events is lost.
	c.push("snapshot", snapshot{
		Match:    profile,
		Messages: h.chatSvc.Transcript(matchID),
		Typing:   h.replies != nil && h.replies.Pending(matchID),
		Quota:    h.chatSvc.Quota(),
	})

	go h.writeLoop(ctx, cancel, conn, c)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		h.handleMessage(ctx, c, msg)
	}
}

func (h *Handler) subscribe(ctx context.Context, c *connection) error {
	err := h.events.Subscribe(ctx, chatModel.TopicMessageAppended, func(_ context.Context, msg pubsub.Message) error {
		if msg.Key != c.matchID {
			return nil
		}
		var ev chatModel.MessageAppended
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return err
		}
		// Every message from the user arms a reply.
		c.push("message", messageEvent{
			Message: ev.Message,
			Typing:  ev.Message.FromMe() && h.replies != nil,
		})
		return nil
	})
	if err != nil {
		return err
	}

	return h.events.Subscribe(ctx, chatModel.TopicPaywallChanged, func(_ context.Context, msg pubsub.Message) error {
		var ev chatModel.PaywallChanged
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return err
		}
		c.push("paywall", newPaywallEvent(ev.Visible, ev.Quota))
		return nil
	})
}

func (h *Handler) handleMessage(ctx context.Context, c *connection, msg inboundMessage) {
	switch msg.Type {
	case "send":
		_, err := h.chatSvc.SubmitUserMessage(ctx, c.matchID, msg.Text)
		switch {
		case err == nil:
		case errors.Is(err, chatService.ErrQuotaExceeded):
			c.push("quota_exceeded", newPaywallEvent(true, h.chatSvc.Quota()))
		default:
			c.push("error", map[string]string{"message": err.Error()})
		}
	case "dismiss_paywall":
		h.chatSvc.DismissPaywall(ctx)
	case "read":
		h.chatSvc.MarkRead(c.matchID)
	default:
		c.push("error", map[string]string{"message": "unsupported message type: " + msg.Type})
	}
}

// writeLoop is the only goroutine writing to conn.
func (h *Handler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, c *connection) {
	defer cancel()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.outbox:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[websocket] write %s failed: %v", msg.Type, err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}

func (h *Handler) leave(matchID string) {
	if h.replies != nil {
		h.replies.Leave(matchID)
	}
	log.Printf("[websocket] connection closed for match: %s", matchID)
}

func newPaywallEvent(visible bool, quota chatModel.QuotaStatus) paywallEvent {
	ev := paywallEvent{Visible: visible, Quota: quota}
	if visible {
		offer := paywall.DefaultOffer(quota.Limit)
		ev.Offer = &offer
	}
	return ev
}
