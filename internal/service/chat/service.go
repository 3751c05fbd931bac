package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/upendo-connect/backend/internal/model/chat"
	"github.com/upendo-connect/backend/internal/pubsub"
)

// DefaultQuota is the number of free messages a user may send.
const DefaultQuota = 5

var (
	ErrMatchRequired = errors.New("match id is required")
	ErrEmptyMessage  = errors.New("message text is empty")
	ErrQuotaExceeded = errors.New("free message quota exceeded")
	ErrStaleReply    = errors.New("reply superseded by newer messages")
)

type session struct {
	messages  []chat.Message
	unread    int
	updatedAt time.Time
}

// Service owns every conversation, the sent-message counter and the
// paywall flag. All mutations go through its methods.
type Service struct {
	mu             sync.Mutex
	quota          int
	sent           int
	paywallVisible bool
	sessions       map[string]*session

	publisher pubsub.Publisher
	now       func() time.Time
	newID     func() string
}

// Option customises a Service.
type Option func(*Service)

// WithQuota overrides DefaultQuota. Values below zero are treated as zero.
func WithQuota(n int) Option {
	return func(s *Service) {
		if n < 0 {
			n = 0
		}
		s.quota = n
	}
}

// WithPublisher emits chat events on the given bus.
func WithPublisher(p pubsub.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService bootstraps the in-memory chat service.
func NewService(opts ...Option) *Service {
	s := &Service{
		quota:    DefaultQuota,
		sessions: make(map[string]*session),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitUserMessage appends a user-authored message if the quota allows.
// Over quota the message is dropped, the paywall is raised and
// ErrQuotaExceeded is returned.
func (s *Service) SubmitUserMessage(ctx context.Context, matchID, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if matchID == "" {
		return chat.Message{}, ErrMatchRequired
	}
	if text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sent >= s.quota {
		changed := !s.paywallVisible
		s.paywallVisible = true
		if changed {
			s.publishPaywallLocked(ctx)
		}
		return chat.Message{}, ErrQuotaExceeded
	}

	msg := s.appendLocked(ctx, matchID, chat.SenderMe, text)
	s.sent++
	return msg, nil
}

// ReceiveMatchMessage appends a match-authored message. Incoming messages
// never count against the quota.
func (s *Service) ReceiveMatchMessage(ctx context.Context, matchID, text string) (chat.Message, error) {
	if matchID == "" {
		return chat.Message{}, ErrMatchRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ctx, matchID, matchID, text), nil
}

// DeliverReply behaves like ReceiveMatchMessage but only while the
// session still ends with the message identified by inReplyTo.
func (s *Service) DeliverReply(ctx context.Context, matchID, inReplyTo, text string) (chat.Message, error) {
	if matchID == "" {
		return chat.Message{}, ErrMatchRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[matchID]
	if !ok || len(sess.messages) == 0 || sess.messages[len(sess.messages)-1].ID != inReplyTo {
		return chat.Message{}, ErrStaleReply
	}
	return s.appendLocked(ctx, matchID, matchID, text), nil
}

// DismissPaywall hides the paywall prompt. Calling it while hidden is a no-op.
func (s *Service) DismissPaywall(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paywallVisible {
		return
	}
	s.paywallVisible = false
	s.publishPaywallLocked(ctx)
}

// MarkRead clears the unread counter of a session.
func (s *Service) MarkRead(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[matchID]; ok {
		sess.unread = 0
	}
}

// Quota returns the current gate status.
func (s *Service) Quota() chat.QuotaStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotaLocked()
}

// PaywallVisible reports whether the paywall prompt should be shown.
func (s *Service) PaywallVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paywallVisible
}

// Transcript returns a copy of the session's messages in append order.
// Unknown matches yield an empty transcript.
func (s *Service) Transcript(matchID string) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[matchID]
	if !ok {
		return []chat.Message{}
	}
	copied := make([]chat.Message, len(sess.messages))
	copy(copied, sess.messages)
	return copied
}

// Sessions summarises every conversation, most recently updated first.
func (s *Service) Sessions() []chat.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chat.SessionSummary, 0, len(s.sessions))
	for id, sess := range s.sessions {
		summary := chat.SessionSummary{
			MatchID:      id,
			MessageCount: len(sess.messages),
			UnreadCount:  sess.unread,
			UpdatedAt:    sess.updatedAt,
		}
		if n := len(sess.messages); n > 0 {
			summary.LastMessagePreview = preview(sess.messages[n-1].Text)
		}
		out = append(out, summary)
	}
	sortSummaries(out)
	return out
}

func (s *Service) appendLocked(ctx context.Context, matchID, sender, text string) chat.Message {
	sess, ok := s.sessions[matchID]
	if !ok {
		sess = &session{messages: make([]chat.Message, 0, 16)}
		s.sessions[matchID] = sess
	}

	msg := chat.Message{
		ID:        s.newID(),
		SenderID:  sender,
		Text:      text,
		Timestamp: s.now(),
	}
	sess.messages = append(sess.messages, msg)
	sess.updatedAt = msg.Timestamp
	if !msg.FromMe() {
		sess.unread++
	}

	s.publishLocked(ctx, chat.TopicMessageAppended, matchID, chat.MessageAppended{MatchID: matchID, Message: msg})
	return msg
}

func (s *Service) quotaLocked() chat.QuotaStatus {
	remaining := s.quota - s.sent
	if remaining < 0 {
		remaining = 0
	}
	return chat.QuotaStatus{
		Sent:           s.sent,
		Limit:          s.quota,
		Remaining:      remaining,
		Exceeded:       s.sent >= s.quota,
		PaywallVisible: s.paywallVisible,
	}
}

func (s *Service) publishPaywallLocked(ctx context.Context) {
	s.publishLocked(ctx, chat.TopicPaywallChanged, "", chat.PaywallChanged{
		Visible: s.paywallVisible,
		Quota:   s.quotaLocked(),
	})
}

// publishLocked runs under s.mu so subscribers see events in mutation order.
func (s *Service) publishLocked(ctx context.Context, topic, key string, event any) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[chat] failed to encode %s event: %v", topic, err)
		return
	}
	if err := s.publisher.Publish(ctx, pubsub.Message{Topic: topic, Key: key, Payload: payload}); err != nil {
		log.Printf("[chat] failed to publish %s for match=%s: %v", topic, key, err)
	}
}
