package paywall

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/upendo-connect/backend/internal/model/chat"
	"github.com/upendo-connect/backend/internal/model/paywall"
	chatService "github.com/upendo-connect/backend/internal/service/chat"
	"github.com/upendo-connect/backend/pkg/utils"
)

// Handler exposes the paywall flag and the free-message quota.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the paywall handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the paywall and quota routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/paywall", h.handleStatus)
	r.Post("/paywall/dismiss", h.handleDismiss)
	r.Get("/quota", h.handleQuota)
}

type statusResponse struct {
	Visible bool                  `json:"visible"`
	Quota   chatModel.QuotaStatus `json:"quota"`
	Offer   paywall.Offer         `json:"offer"`
}

func (h *Handler) status() statusResponse {
	quota := h.chatSvc.Quota()
	return statusResponse{
		Visible: quota.PaywallVisible,
		Quota:   quota,
		Offer:   paywall.DefaultOffer(quota.Limit),
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.status())
}

// handleDismiss hides the prompt. The counter is untouched, so the next
// send over quota shows it again.
func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	h.chatSvc.DismissPaywall(r.Context())
	utils.RespondJSON(w, http.StatusOK, h.status())
}

func (h *Handler) handleQuota(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.chatSvc.Quota())
}
