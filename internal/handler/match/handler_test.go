package match

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/model/user"
)

type fakeGenerator struct {
	county  string
	genders []match.Gender
}

func (f *fakeGenerator) GenerateMatches(_ context.Context, county string, genders []match.Gender) []match.Profile {
	f.county = county
	f.genders = genders
	return []match.Profile{
		{ID: "match_1", Name: "Njeri", County: county, Gender: match.Female},
		{ID: "match_2", Name: "Otieno", County: county, Gender: match.Male},
	}
}

func setupRouter() (*chi.Mux, *fakeGenerator, *match.MemoryStore, *user.MemoryStore) {
	gen := &fakeGenerator{}
	matches := match.NewMemoryStore()
	users := user.NewMemoryStore()

	r := chi.NewRouter()
	New(gen, matches, users).RegisterRoutes(r)
	return r, gen, matches, users
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestDiscoverUsesQueryFilters(t *testing.T) {
	r, gen, matches, _ := setupRouter()

	resp := get(r, "/matches?county=Mombasa&gender=male&gender=trans")
	require.Equal(t, http.StatusOK, resp.Code)

	var profiles []match.Profile
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profiles))
	assert.Len(t, profiles, 2)
	assert.Equal(t, "Mombasa", gen.county)
	assert.Equal(t, []match.Gender{match.Male, match.Transgender}, gen.genders)

	stored, ok := matches.FindByID("match_2")
	require.True(t, ok)
	assert.Equal(t, "Otieno", stored.Name)
}

func TestDiscoverDefaultsWithoutUser(t *testing.T) {
	r, gen, _, _ := setupRouter()

	resp := get(r, "/matches")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, match.DefaultCounty, gen.county)
	assert.Empty(t, gen.genders)
}

func TestDiscoverFallsBackToUserPreferences(t *testing.T) {
	r, gen, _, users := setupRouter()
	users.Save(user.Profile{
		ID:           user.LocalID,
		Name:         "Wanjiru",
		County:       "Kiambu",
		InterestedIn: []match.Gender{match.Male},
	})

	resp := get(r, "/matches")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Kiambu", gen.county)
	assert.Equal(t, []match.Gender{match.Male}, gen.genders)
}

func TestDiscoverRejectsUnknownFilters(t *testing.T) {
	r, _, _, _ := setupRouter()

	assert.Equal(t, http.StatusBadRequest, get(r, "/matches?county=Atlantis").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/matches?gender=robot").Code)
}

func TestGetMatch(t *testing.T) {
	r, _, matches, _ := setupRouter()
	matches.Save(match.Profile{ID: "fallback_1", Name: "Wanjiku Mwangi"})

	resp := get(r, "/matches/fallback_1")
	require.Equal(t, http.StatusOK, resp.Code)
	var profile match.Profile
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Equal(t, "Wanjiku Mwangi", profile.Name)

	assert.Equal(t, http.StatusNotFound, get(r, "/matches/unknown").Code)
}

func TestCounties(t *testing.T) {
	r, _, _, _ := setupRouter()

	resp := get(r, "/counties")
	require.Equal(t, http.StatusOK, resp.Code)
	var counties []string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &counties))
	assert.Len(t, counties, 47)
	assert.Contains(t, counties, match.DefaultCounty)
}

func TestParseGendersDeduplicates(t *testing.T) {
	got, ok := parseGenders([]string{"female, women", "", "Male"})
	require.True(t, ok)
	assert.Equal(t, []match.Gender{match.Female, match.Male}, got)
}
