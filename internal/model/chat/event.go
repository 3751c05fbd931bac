package chat

// Bus topics published by the chat service.
const (
	TopicMessageAppended = "chat.message.appended"
	TopicPaywallChanged  = "chat.paywall.changed"
)

// MessageAppended is published after a message joins a session.
type MessageAppended struct {
	MatchID string  `json:"matchId"`
	Message Message `json:"message"`
}

// PaywallChanged is published when the paywall flag flips.
type PaywallChanged struct {
	Visible bool        `json:"visible"`
	Quota   QuotaStatus `json:"quota"`
}
