package semindex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/polzovatel/screenintel/internal/embed"
	"github.com/polzovatel/screenintel/internal/model"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	idx, err := Open(dsn, embed.NewLocalEmbedder(), Options{
		RetentionDays: 365, MaxElements: 1_000_000,
		StaleCacheTTL: time.Minute, CleanupInterval: time.Hour,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func screenWithButton(id, text string) *model.ScreenState {
	return &model.ScreenState{
		ID: id, App: "Mail", Timestamp: time.Now(),
		Elements: []model.Element{
			{ID: id + "-e1", Type: model.TypeButton, Text: text, Clickable: true},
		},
	}
}

func TestIndex_IndexAndSearchRoundTrip(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexScreenState(ctx, screenWithButton("s1", "reply to email"), false))

	results, err := idx.Search(ctx, "reply to email", 3, 0.0, SearchFilters{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "s1", results[0].ScreenID)
}

func TestIndex_ReindexingSameScreenReplacesStaleVectors(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexScreenState(ctx, screenWithButton("s1", "reply to email"), false))
	require.NoError(t, idx.IndexScreenState(ctx, screenWithButton("s1", "archive message"), false))

	// minScore 0.5: a surviving stale vector would score 1.0 here, while the
	// replacement "archive message" vector shares no token and scores 0.
	results, err := idx.Search(ctx, "reply to email", 5, 0.5, SearchFilters{})
	require.NoError(t, err)
	for _, r := range results {
		require.NotEqual(t, "s1", r.ScreenID, "stale vector from the first index call should not survive re-indexing")
	}

	results, err = idx.Search(ctx, "archive message", 5, 0.0, SearchFilters{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "s1", results[0].ScreenID)
}

func TestIndex_SearchAppliesClickableFilter(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := screenWithButton("s1", "reply")
	s.Elements = append(s.Elements, model.Element{ID: "s1-e2", Type: model.TypeText, Text: "reply", Clickable: false})
	require.NoError(t, idx.IndexScreenState(ctx, s, false))

	results, err := idx.Search(ctx, "reply", 10, 0.0, SearchFilters{ClickableOnly: true})
	require.NoError(t, err)
	for _, r := range results {
		require.True(t, r.Clickable)
	}
}

func TestIndex_SkipEmbeddingLeavesNoVectors(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := screenWithButton("s1", "reply to email")
	require.NoError(t, idx.IndexScreenState(ctx, s, true))
	require.False(t, s.HasEmbeddings)

	rows, err := idx.store.AllEmbeddings()
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestIndex_GenerateEmbeddingsForCached_StaleReturnsError(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.GenerateEmbeddingsForCached(context.Background(), "never-seen")
	require.Error(t, err)
}

func TestIndex_GenerateEmbeddingsForCached_EmbedsCachedScreen(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	s := screenWithButton("s1", "reply to email")
	require.NoError(t, idx.IndexScreenState(ctx, s, true))

	require.NoError(t, idx.GenerateEmbeddingsForCached(ctx, "s1"))

	rows, err := idx.store.AllEmbeddings()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
}

func TestIndex_PurgeScreensRemovesFromSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.IndexScreenState(ctx, screenWithButton("s1", "reply to email"), false))

	require.NoError(t, idx.PurgeScreens(func(string) bool { return true }, []string{"s1"}))

	results, err := idx.Search(ctx, "reply to email", 3, 0.0, SearchFilters{})
	require.NoError(t, err)
	for _, r := range results {
		require.NotEqual(t, "s1", r.ScreenID)
	}
}
