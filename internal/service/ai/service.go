package ai

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// DefaultBatchSize is how many profiles one discovery request asks for.
const DefaultBatchSize = 6

// Random is the subset of math/rand/v2 used to decorate profiles.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// Service generates match profiles and chat replies through a chat model.
// Without a model every call returns its fallback value.
type Service struct {
	matchChain compose.Runnable[map[string]any, *schema.Message]
	replyChain compose.Runnable[map[string]any, *schema.Message]
	batchSize  int
	rnd        Random
}

// Option customises a Service.
type Option func(*Service)

// WithBatchSize sets the number of profiles requested per discovery call.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithRandom replaces the source used for online status and distance.
func WithRandom(r Random) Option {
	return func(s *Service) { s.rnd = r }
}

// NewService compiles the match and reply chains on top of chatModel.
// A nil chatModel yields an offline service.
func NewService(ctx context.Context, chatModel model.BaseChatModel, opts ...Option) (*Service, error) {
	s := &Service{
		batchSize: DefaultBatchSize,
		rnd:       globalRandom{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if chatModel == nil {
		return s, nil
	}

	matchChain, err := compileChain(ctx, chatModel, prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(matchSystemPrompt),
		schema.UserMessage(matchUserPrompt),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to compile match chain: %w", err)
	}

	replyChain, err := compileChain(ctx, chatModel, prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{prompt}"),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	s.matchChain = matchChain
	s.replyChain = replyChain
	return s, nil
}

// Online reports whether a chat model backs the service.
func (s *Service) Online() bool {
	return s != nil && s.matchChain != nil && s.replyChain != nil
}

func compileChain(ctx context.Context, chatModel model.BaseChatModel, tpl prompt.ChatTemplate) (compose.Runnable[map[string]any, *schema.Message], error) {
	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(tpl)
	chain.AppendChatModel(chatModel)
	return chain.Compile(ctx)
}
