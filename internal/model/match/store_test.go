package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveKeepsFirstSeenOrder(t *testing.T) {
	store := NewMemoryStore(Profile{ID: "a", Name: "Amani"}, Profile{ID: "b", Name: "Baraka"})
	store.Save(Profile{ID: "a", Name: "Amani Updated"}, Profile{ID: "c", Name: "Chebet"})

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "Amani Updated", list[0].Name)
}

func TestMemoryStoreSkipsEmptyID(t *testing.T) {
	store := NewMemoryStore(Profile{Name: "nobody"})
	assert.Empty(t, store.List())
}

func TestMemoryStoreFindByID(t *testing.T) {
	store := NewMemoryStore(Profile{ID: "fallback_1", Name: "Wanjiku Mwangi"})

	got, ok := store.FindByID("fallback_1")
	require.True(t, ok)
	assert.Equal(t, "Wanjiku Mwangi", got.Name)

	_, ok = store.FindByID("missing")
	assert.False(t, ok)
}

func TestParseGender(t *testing.T) {
	cases := map[string]Gender{
		"Male":        Male,
		" female ":    Female,
		"TRANSGENDER": Transgender,
		"women":       Female,
	}
	for raw, want := range cases {
		got, ok := ParseGender(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseGender("other")
	assert.False(t, ok)
}

func TestCounties(t *testing.T) {
	all := Counties()
	assert.Len(t, all, 47)
	assert.True(t, IsCounty(DefaultCounty))
	assert.False(t, IsCounty("Atlantis"))

	all[0] = "mutated"
	assert.Equal(t, "Mombasa", Counties()[0])
}
