package user

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/upendo-connect/backend/internal/model/chat"
	"github.com/upendo-connect/backend/internal/model/user"
	"github.com/upendo-connect/backend/pkg/utils"
)

// QuotaReader exposes the free-message gate.
type QuotaReader interface {
	Quota() chatModel.QuotaStatus
}

// Handler serves onboarding and the current user's profile.
type Handler struct {
	users     user.Store
	validator *user.Validator
	quota     QuotaReader
}

// New creates the onboarding handler.
func New(users user.Store, quota QuotaReader) *Handler {
	return &Handler{
		users:     users,
		validator: user.NewValidator(),
		quota:     quota,
	}
}

// RegisterRoutes mounts the onboarding and profile routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/onboarding", h.handleOnboarding)
	r.Get("/me", h.handleMe)
}

type meResponse struct {
	Profile user.Profile          `json:"profile"`
	Quota   chatModel.QuotaStatus `json:"quota"`
}

func (h *Handler) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var draft user.Profile
	if err := utils.DecodeJSON(w, r, &draft); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.Validate(draft); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := user.Complete(draft)
	h.users.Save(profile)
	log.Printf("[user] onboarded %s in %s", profile.Name, profile.County)

	utils.RespondJSON(w, http.StatusCreated, profile)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.users.Current()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "onboarding not completed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, meResponse{
		Profile: profile,
		Quota:   h.quota.Quota(),
	})
}
