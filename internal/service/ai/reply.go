package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/upendo-connect/backend/internal/model/chat"
)

const (
	// FallbackReply is used when the model call fails.
	FallbackReply = "Hey there! 👋"
	// EmptyReply is used when the model answers with blank text.
	EmptyReply = "Hey! Nice to hear from you."
)

// ReplyRequest carries what the model needs to answer as the match.
type ReplyRequest struct {
	UserName        string
	MatchName       string
	MatchBio        string
	MatchTown       string
	LastUserMessage string
	History         []chat.Turn
}

// GenerateReply returns the match's next message. It never fails: errors
// resolve to FallbackReply.
func (s *Service) GenerateReply(ctx context.Context, req ReplyRequest) string {
	if s.replyChain == nil {
		return FallbackReply
	}

	msg, err := s.replyChain.Invoke(ctx, map[string]any{
		"system": buildReplySystemPrompt(req),
		"prompt": buildReplyUserPrompt(req),
	})
	if err != nil {
		log.Printf("[ai] reply generation failed for match=%s: %v", req.MatchName, err)
		return FallbackReply
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return EmptyReply
	}
	return strings.TrimSpace(msg.Content)
}

func buildReplySystemPrompt(req ReplyRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are roleplaying as %s, a Kenyan dating app user.", displayName(req.MatchName, "your match"))
	if req.MatchTown != "" {
		fmt.Fprintf(&b, " You live in %s.", req.MatchTown)
	}
	if req.MatchBio != "" {
		fmt.Fprintf(&b, " Your profile bio says: %q.", req.MatchBio)
	}
	b.WriteString("\nReply naturally, casually, and briefly (under 2 sentences). Use a little Kenyan slang (Sheng) if appropriate but keep it understandable.")
	b.WriteString("\nStrictly return only the reply text.")
	return b.String()
}

func buildReplyUserPrompt(req ReplyRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user %s just sent you: %q.", displayName(req.UserName, "a new match"), req.LastUserMessage)
	if conversation := formatConversation(req); conversation != "" {
		b.WriteString("\n\nContext so far:\n")
		b.WriteString(conversation)
	}
	return b.String()
}

// formatConversation renders the whole transcript, one "Name: text" line
// per message.
func formatConversation(req ReplyRequest) string {
	userName := displayName(req.UserName, "User")
	matchName := displayName(req.MatchName, "Match")

	lines := make([]string, 0, len(req.History))
	for _, t := range req.History {
		name := matchName
		if t.Sender == chat.RoleMe {
			name = userName
		}
		lines = append(lines, name+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}

func displayName(name, fallback string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fallback
}
