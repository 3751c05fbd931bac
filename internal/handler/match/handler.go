package match

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/model/user"
	"github.com/upendo-connect/backend/pkg/utils"
)

// Generator produces a batch of candidate profiles.
type Generator interface {
	GenerateMatches(ctx context.Context, county string, genders []match.Gender) []match.Profile
}

// Handler serves discovery endpoints.
type Handler struct {
	generator Generator
	matches   match.Store
	users     user.Store
}

// New creates the discovery handler.
func New(generator Generator, matches match.Store, users user.Store) *Handler {
	return &Handler{
		generator: generator,
		matches:   matches,
		users:     users,
	}
}

// RegisterRoutes mounts the county and match routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/counties", h.handleCounties)
	r.Get("/matches", h.handleDiscover)
	r.Get("/matches/{matchID}", h.handleGetMatch)
}

func (h *Handler) handleCounties(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, match.Counties())
}

// handleDiscover generates a fresh batch for the requested county and
// genders. Missing filters fall back to the onboarded user's preferences.
func (h *Handler) handleDiscover(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	me, onboarded := h.users.Current()

	county := strings.TrimSpace(query.Get("county"))
	switch {
	case county == "" && onboarded:
		county = me.County
	case county == "":
		county = match.DefaultCounty
	case !match.IsCounty(county):
		utils.RespondError(w, http.StatusBadRequest, "unknown county: "+county)
		return
	}

	genders, ok := parseGenders(query["gender"])
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "unknown gender filter")
		return
	}
	if len(genders) == 0 && onboarded {
		genders = me.InterestedIn
	}

	profiles := h.generator.GenerateMatches(r.Context(), county, genders)
	h.matches.Save(profiles...)
	log.Printf("[match] generated %d profiles for county=%s", len(profiles), county)

	utils.RespondJSON(w, http.StatusOK, profiles)
}

func (h *Handler) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.matches.FindByID(chi.URLParam(r, "matchID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "match not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, profile)
}

// parseGenders accepts repeated and comma separated values.
func parseGenders(values []string) ([]match.Gender, bool) {
	var out []match.Gender
	seen := make(map[match.Gender]bool)
	for _, value := range values {
		for _, raw := range strings.Split(value, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			g, ok := match.ParseGender(raw)
			if !ok {
				return nil, false
			}
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	return out, true
}
