package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/upendo-connect/backend/internal/model/chat"
	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/model/paywall"
	chatService "github.com/upendo-connect/backend/internal/service/chat"
	"github.com/upendo-connect/backend/pkg/utils"
)

// ReplyTracker 聊天界面使用的自动回复调度器接口
type ReplyTracker interface {
	Pending(matchID string) bool
	Leave(matchID string)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	matches match.Store
	replies ReplyTracker
}

// New 创建聊天处理器。replies 可以为 nil。
func New(chatSvc *chatService.Service, matches match.Store, replies ReplyTracker) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		matches: matches,
		replies: replies,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chats", h.handleListSessions)
	r.Route("/chats/{matchID}", func(cr chi.Router) {
		cr.Get("/messages", h.handleTranscript)
		cr.Post("/messages", h.handleSend)
		cr.Post("/read", h.handleMarkRead)
		cr.Post("/leave", h.handleLeave)
	})
}

type sessionView struct {
	chatModel.SessionSummary
	Match *match.Profile `json:"match,omitempty"`
}

type transcriptView struct {
	MatchID  string                `json:"matchId"`
	Match    match.Profile         `json:"match"`
	Messages []chatModel.Message   `json:"messages"`
	Typing   bool                  `json:"typing"`
	Quota    chatModel.QuotaStatus `json:"quota"`
}

// QuotaExceededResponse 免费消息用完时随 402 返回
type QuotaExceededResponse struct {
	Error   string                `json:"error"`
	Quota   chatModel.QuotaStatus `json:"quota"`
	Paywall paywall.Offer         `json:"paywall"`
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	summaries := h.chatSvc.Sessions()
	views := make([]sessionView, 0, len(summaries))
	for _, s := range summaries {
		view := sessionView{SessionSummary: s}
		if p, ok := h.matches.FindByID(s.MatchID); ok {
			view.Match = &p
		}
		views = append(views, view)
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookupMatch(w, r)
	if !ok {
		return
	}

	utils.RespondJSON(w, http.StatusOK, transcriptView{
		MatchID:  profile.ID,
		Match:    profile,
		Messages: h.chatSvc.Transcript(profile.ID),
		Typing:   h.replies != nil && h.replies.Pending(profile.ID),
		Quota:    h.chatSvc.Quota(),
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookupMatch(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.chatSvc.SubmitUserMessage(r.Context(), profile.ID, payload.Text)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusCreated, msg)
	case errors.Is(err, chatService.ErrQuotaExceeded):
		quota := h.chatSvc.Quota()
		utils.RespondJSON(w, http.StatusPaymentRequired, QuotaExceededResponse{
			Error:   err.Error(),
			Quota:   quota,
			Paywall: paywall.DefaultOffer(quota.Limit),
		})
	case errors.Is(err, chatService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookupMatch(w, r)
	if !ok {
		return
	}
	h.chatSvc.MarkRead(profile.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookupMatch(w, r)
	if !ok {
		return
	}
	if h.replies != nil {
		h.replies.Leave(profile.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookupMatch(w http.ResponseWriter, r *http.Request) (match.Profile, bool) {
	matchID := chi.URLParam(r, "matchID")
	profile, ok := h.matches.FindByID(matchID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "match not found")
		return match.Profile{}, false
	}
	return profile, true
}
