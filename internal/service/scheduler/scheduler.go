package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/upendo-connect/backend/internal/model/chat"
	"github.com/upendo-connect/backend/internal/pubsub"
	"github.com/upendo-connect/backend/internal/service/ai"
	chatservice "github.com/upendo-connect/backend/internal/service/chat"
)

// Conversations is the part of the chat service the scheduler drives.
type Conversations interface {
	Transcript(matchID string) []chat.Message
	DeliverReply(ctx context.Context, matchID, inReplyTo, text string) (chat.Message, error)
}

// Replier produces the match's answer. Implementations never fail; they
// resolve to a fallback string instead.
type Replier interface {
	GenerateReply(ctx context.Context, req ai.ReplyRequest) string
}

// Directory resolves display names for the transcript prompt.
type Directory interface {
	UserName() string
	Match(matchID string) (name, town, bio string)
}

// Config tunes reply timing.
type Config struct {
	DelayMin time.Duration
	DelayMax time.Duration
	Timeout  time.Duration
}

// DefaultConfig mirrors the 2–5 second "typing" pause of the app.
func DefaultConfig() Config {
	return Config{
		DelayMin: 2 * time.Second,
		DelayMax: 5 * time.Second,
		Timeout:  20 * time.Second,
	}
}

type pendingReply struct {
	gen       uint64
	inReplyTo string
	timer     *time.Timer
	cancel    context.CancelFunc
}

// Scheduler answers user messages after a randomized delay. At most one
// reply is pending per match; any newer message supersedes it.
type Scheduler struct {
	chat      Conversations
	replier   Replier
	directory Directory
	cfg       Config
	delay     func() time.Duration

	mu      sync.Mutex
	gen     uint64
	pending map[string]*pendingReply
	closed  bool
}

// New creates a Scheduler. Call Start to attach it to the bus.
func New(conversations Conversations, replier Replier, directory Directory, cfg Config) *Scheduler {
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	s := &Scheduler{
		chat:      conversations,
		replier:   replier,
		directory: directory,
		cfg:       cfg,
		pending:   make(map[string]*pendingReply),
	}
	s.delay = s.randomDelay
	return s
}

// Start subscribes to appended-message events until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, sub pubsub.Subscriber) error {
	if err := sub.Subscribe(ctx, chat.TopicMessageAppended, s.handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", chat.TopicMessageAppended, err)
	}
	return nil
}

func (s *Scheduler) handle(_ context.Context, msg pubsub.Message) error {
	var ev chat.MessageAppended
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("decode appended event: %w", err)
	}
	s.Observe(ev)
	return nil
}

// Observe re-evaluates a session after a message was appended: pending
// work is cancelled, and a new reply is armed when the user spoke last.
func (s *Scheduler) Observe(ev chat.MessageAppended) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.cancelLocked(ev.MatchID)
	if !ev.Message.FromMe() {
		return
	}

	s.gen++
	p := &pendingReply{gen: s.gen, inReplyTo: ev.Message.ID}
	matchID, lastText := ev.MatchID, ev.Message.Text
	p.timer = time.AfterFunc(s.delay(), func() { s.fire(matchID, p, lastText) })
	s.pending[matchID] = p
}

// Leave drops pending work for a match, e.g. when its chat is closed.
func (s *Scheduler) Leave(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(matchID)
}

// Pending reports whether a reply is scheduled or being generated.
func (s *Scheduler) Pending(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[matchID]
	return ok
}

// Close cancels everything and ignores later events.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id := range s.pending {
		s.cancelLocked(id)
	}
}

func (s *Scheduler) cancelLocked(matchID string) {
	p, ok := s.pending[matchID]
	if !ok {
		return
	}
	p.timer.Stop()
	if p.cancel != nil {
		p.cancel()
	}
	delete(s.pending, matchID)
}

func (s *Scheduler) current(matchID string, p *pendingReply) bool {
	cur, ok := s.pending[matchID]
	return ok && cur.gen == p.gen
}

func (s *Scheduler) fire(matchID string, p *pendingReply, lastText string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	s.mu.Lock()
	if !s.current(matchID, p) {
		s.mu.Unlock()
		return
	}
	p.cancel = cancel
	s.mu.Unlock()

	req := ai.ReplyRequest{
		LastUserMessage: lastText,
		History:         chat.Transcript(s.chat.Transcript(matchID)),
	}
	if s.directory != nil {
		req.UserName = s.directory.UserName()
		req.MatchName, req.MatchTown, req.MatchBio = s.directory.Match(matchID)
	}

	reply := s.replier.GenerateReply(ctx, req)

	s.mu.Lock()
	stale := !s.current(matchID, p)
	if !stale {
		delete(s.pending, matchID)
	}
	s.mu.Unlock()
	if stale {
		log.Printf("[scheduler] discarded superseded reply for match=%s", matchID)
		return
	}

	// A timed-out generation still delivers its fallback text.
	if _, err := s.chat.DeliverReply(context.WithoutCancel(ctx), matchID, p.inReplyTo, reply); err != nil {
		if errors.Is(err, chatservice.ErrStaleReply) {
			log.Printf("[scheduler] discarded stale reply for match=%s", matchID)
			return
		}
		log.Printf("[scheduler] failed to deliver reply for match=%s: %v", matchID, err)
	}
}

func (s *Scheduler) randomDelay() time.Duration {
	span := s.cfg.DelayMax - s.cfg.DelayMin
	if span <= 0 {
		return s.cfg.DelayMin
	}
	return s.cfg.DelayMin + rand.N(span)
}
