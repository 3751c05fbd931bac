package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/upendo-connect/backend/internal/model/match"
)

const maxBioRunes = 150

var errNoModel = errors.New("chat model not configured")

type rawProfile struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Town   string `json:"town"`
	Bio    string `json:"bio"`
}

// GenerateMatches asks the model for profiles near county. An empty
// genders list means Female. Any failure returns FallbackMatches.
func (s *Service) GenerateMatches(ctx context.Context, county string, genders []match.Gender) []match.Profile {
	if len(genders) == 0 {
		genders = []match.Gender{match.Female}
	}

	raw, err := s.requestProfiles(ctx, county, genders)
	if err != nil {
		log.Printf("[ai] match generation failed for county=%s, using fallback: %v", county, err)
		return FallbackMatches(county)
	}

	profiles := make([]match.Profile, 0, len(raw))
	for i, p := range raw {
		profiles = append(profiles, s.decorate(p, i, county))
	}
	log.Printf("[ai] generated %d matches for county=%s", len(profiles), county)
	return profiles
}

func (s *Service) requestProfiles(ctx context.Context, county string, genders []match.Gender) ([]rawProfile, error) {
	if s.matchChain == nil {
		return nil, errNoModel
	}

	labels := make([]string, 0, len(genders))
	for _, g := range genders {
		labels = append(labels, string(g))
	}

	msg, err := s.matchChain.Invoke(ctx, map[string]any{
		"count":   s.batchSize,
		"county":  county,
		"genders": strings.Join(labels, " or "),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run match chain: %w", err)
	}
	if msg == nil {
		return nil, nil
	}
	return parseProfiles(msg.Content)
}

// parseProfiles extracts the outermost JSON array, tolerating code fences
// or prose around it. Blank output is an empty result.
func parseProfiles(content string) ([]rawProfile, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, nil
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json array")
	}

	var out []rawProfile
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) decorate(p rawProfile, index int, county string) match.Profile {
	seed := nameSeed(p.Name) + index

	gender, ok := match.ParseGender(p.Gender)
	if !ok {
		gender = match.Gender(strings.TrimSpace(p.Gender))
	}

	return match.Profile{
		ID:         "match_" + uuid.NewString(),
		Name:       strings.TrimSpace(p.Name),
		Age:        p.Age,
		Gender:     gender,
		County:     county,
		Town:       strings.TrimSpace(p.Town),
		Bio:        truncateRunes(strings.TrimSpace(p.Bio), maxBioRunes),
		ImageURL:   PortraitURL(gender, seed),
		IsOnline:   s.rnd.IntN(2) == 1,
		DistanceKm: s.rnd.IntN(20) + 1,
	}
}

// nameSeed sums the UTF-16 code units of name so a name keeps its
// portrait across clients.
func nameSeed(name string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(name)) {
		sum += int(u)
	}
	return sum
}

// PortraitURL picks a randomuser.me portrait. Men and women have 100
// portraits each; other genders alternate between the two by seed parity.
func PortraitURL(g match.Gender, seed int) string {
	if seed < 0 {
		seed = -seed
	}
	index := seed % 100

	bucket := "women"
	switch g {
	case match.Male:
		bucket = "men"
	case match.Female:
		bucket = "women"
	default:
		if seed%2 == 0 {
			bucket = "men"
		}
	}
	return fmt.Sprintf("https://randomuser.me/api/portraits/%s/%d.jpg", bucket, index)
}

// FallbackMatches is returned whenever generation fails.
func FallbackMatches(county string) []match.Profile {
	return []match.Profile{
		{
			ID:         "fallback_1",
			Name:       "Wanjiku Mwangi",
			Age:        24,
			Gender:     match.Female,
			County:     county,
			Town:       "Town Center",
			Bio:        "Loves nature and hiking. Looking for something serious.",
			ImageURL:   "https://randomuser.me/api/portraits/women/44.jpg",
			IsOnline:   true,
			DistanceKm: 5,
		},
		{
			ID:         "fallback_2",
			Name:       "Brian Otieno",
			Age:        27,
			Gender:     match.Male,
			County:     county,
			Town:       "Market Area",
			Bio:        "Tech enthusiast and coffee lover. Let's chat!",
			ImageURL:   "https://randomuser.me/api/portraits/men/32.jpg",
			IsOnline:   false,
			DistanceKm: 12,
		},
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
