package chat

import "time"

// SessionSummary describes one conversation for the chat list.
type SessionSummary struct {
	MatchID            string    `json:"matchId"`
	LastMessagePreview string    `json:"lastMessagePreview"`
	MessageCount       int       `json:"messageCount"`
	UnreadCount        int       `json:"unreadCount"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// QuotaStatus is a snapshot of the free-message gate.
type QuotaStatus struct {
	Sent           int  `json:"sent"`
	Limit          int  `json:"limit"`
	Remaining      int  `json:"remaining"`
	Exceeded       bool `json:"exceeded"`
	PaywallVisible bool `json:"paywallVisible"`
}
