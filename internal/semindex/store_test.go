package semindex

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polzovatel/screenintel/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := openStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleScreen(id string, ts time.Time) *model.ScreenState {
	return &model.ScreenState{
		ID: id, App: "Finder", Timestamp: ts,
		Elements: []model.Element{
			{ID: id + "-e1", Type: model.TypeButton, Text: "Open", Clickable: true},
		},
	}
}

func TestStore_PutAndReadBackEmbeddings(t *testing.T) {
	s := newTestStore(t)
	screen := sampleScreen("scr1", time.Now())
	vec := []float32{0.6, 0.8}
	require.NoError(t, s.PutScreen(screen, map[string][]float32{"scr1-e1": vec}))

	rows, err := s.AllEmbeddings()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "scr1", rows[0].ScreenID)
	require.InDelta(t, 0.6, rows[0].Embedding[0], 1e-6)
	require.InDelta(t, 0.8, rows[0].Embedding[1], 1e-6)
}

func TestStore_PutScreenIsIdempotentPerScreenID(t *testing.T) {
	s := newTestStore(t)
	screen := sampleScreen("scr1", time.Now())
	require.NoError(t, s.PutScreen(screen, nil))

	screen.Elements = append(screen.Elements, model.Element{ID: "scr1-e2", Type: model.TypeText, Text: "hi"})
	require.NoError(t, s.PutScreen(screen, nil))

	ids, err := s.AllScreenIDs()
	require.NoError(t, err)
	require.Len(t, ids, 1)

	st, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 2, st.ElementCount)
}

func TestStore_PurgeScreensRemovesElementsToo(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutScreen(sampleScreen("scr1", time.Now()), nil))
	require.NoError(t, s.PurgeScreens([]string{"scr1"}))

	ids, err := s.AllScreenIDs()
	require.NoError(t, err)
	require.Empty(t, ids)

	st, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 0, st.ScreenCount)
	require.Equal(t, 0, st.ElementCount)
}

func TestStore_ScreenIDsOlderThan(t *testing.T) {
	s := newTestStore(t)
	old := time.Now().Add(-72 * time.Hour)
	fresh := time.Now()
	require.NoError(t, s.PutScreen(sampleScreen("old", old), nil))
	require.NoError(t, s.PutScreen(sampleScreen("fresh", fresh), nil))

	ids, err := s.ScreenIDsOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Equal(t, []string{"old"}, ids)
}

func TestStore_StatsTopAppsByScreens(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutScreen(sampleScreen("a1", time.Now()), nil))
	require.NoError(t, s.PutScreen(sampleScreen("a2", time.Now()), nil))

	st, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 2, st.TopAppsByScreens["Finder"])
}

func TestStore_VectorEncodeDecodeRoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.2, 0.3, -0.4}
	decoded, err := decodeVector(encodeVector(vec))
	require.NoError(t, err)
	require.Equal(t, vec, decoded)
}
