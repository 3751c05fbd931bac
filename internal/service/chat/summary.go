package chat

import (
	"sort"

	"github.com/upendo-connect/backend/internal/model/chat"
)

const previewLimit = 60

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit-1]) + "…"
}

func sortSummaries(items []chat.SessionSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].MatchID < items[j].MatchID
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}
