package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatModel "github.com/upendo-connect/backend/internal/model/chat"
	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/pubsub"
	chatService "github.com/upendo-connect/backend/internal/service/chat"
)

type fakeTracker struct {
	mu   sync.Mutex
	left []string
}

func (f *fakeTracker) Pending(string) bool { return false }

func (f *fakeTracker) Leave(matchID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, matchID)
}

func (f *fakeTracker) leftCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.left)
}

type received struct {
	Type    string          `json:"type"`
	MatchID string          `json:"matchId"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T, opts ...chatService.Option) (*httptest.Server, *chatService.Service, *fakeTracker) {
	t.Helper()
	bus := pubsub.NewWatermillBus()
	t.Cleanup(func() { _ = bus.Close() })

	chatSvc := chatService.NewService(append(opts, chatService.WithPublisher(bus))...)
	matches := match.NewMemoryStore(match.Profile{ID: "m1", Name: "Atieno"})
	tracker := &fakeTracker{}

	r := chi.NewRouter()
	New(chatSvc, matches, bus, tracker).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc, tracker
}

func dial(t *testing.T, srv *httptest.Server, matchID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + matchID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestSnapshotThenLiveMessages(t *testing.T) {
	srv, chatSvc, _ := setup(t)
	_, err := chatSvc.SubmitUserMessage(context.Background(), "m1", "first")
	require.NoError(t, err)

	conn := dial(t, srv, "m1")
	defer conn.Close()

	msg := readNext(t, conn)
	require.Equal(t, "snapshot", msg.Type)
	var snap snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, "Atieno", snap.Match.Name)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, 1, snap.Quota.Sent)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "send", Text: "second"}))
	msg = readNext(t, conn)
	require.Equal(t, "message", msg.Type)
	var ev messageEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, "second", ev.Message.Text)
	assert.True(t, ev.Typing)

	_, err = chatSvc.ReceiveMatchMessage(context.Background(), "m1", "Niaje!")
	require.NoError(t, err)
	msg = readNext(t, conn)
	require.Equal(t, "message", msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, "Niaje!", ev.Message.Text)
	assert.False(t, ev.Typing)
}

func TestOtherMatchesAreFiltered(t *testing.T) {
	srv, chatSvc, _ := setup(t)
	conn := dial(t, srv, "m1")
	defer conn.Close()
	require.Equal(t, "snapshot", readNext(t, conn).Type)

	ctx := context.Background()
	_, err := chatSvc.ReceiveMatchMessage(ctx, "m2", "wrong room")
	require.NoError(t, err)
	_, err = chatSvc.ReceiveMatchMessage(ctx, "m1", "right room")
	require.NoError(t, err)

	msg := readNext(t, conn)
	var ev messageEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, "right room", ev.Message.Text)
}

func TestQuotaExceededAndDismiss(t *testing.T) {
	srv, chatSvc, _ := setup(t, chatService.WithQuota(1))
	conn := dial(t, srv, "m1")
	defer conn.Close()
	require.Equal(t, "snapshot", readNext(t, conn).Type)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "send", Text: "only one"}))
	require.Equal(t, "message", readNext(t, conn).Type)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "send", Text: "one too many"}))
	seen := map[string]paywallEvent{}
	for len(seen) < 2 {
		msg := readNext(t, conn)
		var ev paywallEvent
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		seen[msg.Type] = ev
	}
	require.Contains(t, seen, "paywall")
	require.Contains(t, seen, "quota_exceeded")
	assert.True(t, seen["paywall"].Visible)
	exceeded := chatModel.QuotaStatus{Sent: 1, Limit: 1, Remaining: 0, Exceeded: true, PaywallVisible: true}
	assert.Equal(t, exceeded, seen["paywall"].Quota)
	assert.Equal(t, exceeded, seen["quota_exceeded"].Quota)
	require.NotNil(t, seen["quota_exceeded"].Offer)
	assert.Equal(t, "M-Pesa", seen["quota_exceeded"].Offer.PaymentMethod)

	// The paywall is already up, so only the direct answer arrives.
	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "send", Text: "still trying"}))
	msg := readNext(t, conn)
	require.Equal(t, "quota_exceeded", msg.Type)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "dismiss_paywall"}))
	msg = readNext(t, conn)
	require.Equal(t, "paywall", msg.Type)
	var ev paywallEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.False(t, ev.Visible)
	assert.Nil(t, ev.Offer)
	assert.Equal(t, chatModel.QuotaStatus{Sent: 1, Limit: 1, Exceeded: true}, ev.Quota)
	assert.False(t, chatSvc.PaywallVisible())
	assert.Len(t, chatSvc.Transcript("m1"), 1)
}

func TestUnsupportedMessageType(t *testing.T) {
	srv, _, _ := setup(t)
	conn := dial(t, srv, "m1")
	defer conn.Close()
	require.Equal(t, "snapshot", readNext(t, conn).Type)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "voice"}))
	assert.Equal(t, "error", readNext(t, conn).Type)
}

func TestCloseLeavesConversation(t *testing.T) {
	srv, _, tracker := setup(t)
	conn := dial(t, srv, "m1")
	require.Equal(t, "snapshot", readNext(t, conn).Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return tracker.leftCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestUnknownMatchRejected(t *testing.T) {
	srv, _, _ := setup(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/ghost"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
