package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/broadcast"
)

func TestWikiClientQuestDifficulties(t *testing.T) {
	pages := map[string]string{
		"Quests/Novice":      `{"parse": {"links": [{"ns": 0, "exists": "", "*": "Cook's Assistant"}, {"ns": 120, "exists": "", "*": "Transcript:Cook"}]}}`,
		"Quests/Intermediate": `{"parse": {"links": [{"ns": 0, "exists": "", "*": "Animal Magnetism"}]}}`,
		"Quests/Experienced": `{"parse": {"links": [{"ns": 0, "exists": "", "*": "Monkey Madness I"}]}}`,
		"Quests/Master":      `{"parse": {"links": [{"ns": 0, "exists": "", "*": "Desert Treasure I"}]}}`,
		"Quests/Grandmaster": `{"parse": {"links": [{"ns": 0, "exists": "", "*": "Song of the Elves"}]}}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "parse", r.URL.Query().Get("action"))
		body, ok := pages[r.URL.Query().Get("page")]
		require.True(t, ok, "unexpected page %q", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewWikiClient(testConfig(server.URL))
	quests, err := client.QuestDifficulties(context.Background())
	require.NoError(t, err)

	byName := make(map[string]broadcast.QuestDifficulty, len(quests))
	for _, q := range quests {
		byName[q.Name] = q.Difficulty
	}
	assert.Equal(t, broadcast.QuestNovice, byName["Cook's Assistant"])
	assert.Equal(t, broadcast.QuestGrandmaster, byName["Song of the Elves"])
	_, listed := byName["Transcript:Cook"]
	assert.False(t, listed, "non-article links should be skipped")
}

func TestWikiClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewWikiClient(testConfig(server.URL))
	_, err := client.QuestDifficulties(context.Background())
	assert.Error(t, err)
}
