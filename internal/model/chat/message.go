package chat

import "time"

// SenderMe marks messages authored by the local user. Match-authored
// messages carry the match identifier as their sender.
const SenderMe = "me"

// Message is a single immutable chat turn.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// FromMe reports whether the user sent the message.
func (m Message) FromMe() bool {
	return m.SenderID == SenderMe
}

// Role values used when a transcript is handed to the reply generator.
const (
	RoleMe   = "me"
	RoleThem = "them"
)

// Turn is one transcript line with the sender reduced to a role.
type Turn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Transcript maps a message history to role-tagged turns.
func Transcript(messages []Message) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, msg := range messages {
		role := RoleThem
		if msg.FromMe() {
			role = RoleMe
		}
		turns = append(turns, Turn{Sender: role, Text: msg.Text})
	}
	return turns
}
