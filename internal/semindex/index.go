// Package semindex implements C6, the Semantic Index: a persistent store
// of screens/elements/embeddings, an in-memory ANN layer for vector
// search, the two-tier cache, and the retention sweeper.
package semindex

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/polzovatel/screenintel/internal/embed"
	"github.com/polzovatel/screenintel/internal/errs"
	"github.com/polzovatel/screenintel/internal/model"
)

// vecKey identifies one (screen, element) pair owning a vector.
type vecKey struct {
	screenID, elementID string
}

// ann wraps the raw HNSW graph with the (screenId,elementId) <-> uint32
// mapping the graph itself doesn't know about, plus metadata needed for
// filtering (type, clickable, region, app, timestamp) without round-
// tripping to the store on every search.
type ann struct {
	mu      sync.RWMutex
	graph   *annGraph
	idToKey map[uint32]vecKey
	keyToID map[vecKey]uint32
	meta    map[uint32]entryMeta
}

type entryMeta struct {
	app          string
	elementType  string
	clickable    bool
	screenRegion string
	timestamp    time.Time
}

func newANN() *ann {
	return &ann{
		graph:   newANNGraph(),
		idToKey: make(map[uint32]vecKey),
		keyToID: make(map[vecKey]uint32),
		meta:    make(map[uint32]entryMeta),
	}
}

// insert is idempotent per (screenID, elementID): a prior vector for the
// same key is tombstoned before the new one is inserted, so re-indexing
// never leaves a stale vector live in search results (spec §3 "Idempotent
// per (screenId, elementId)").
func (a *ann) insert(screenID, elementID string, vec []float32, m entryMeta) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := vecKey{screenID, elementID}
	if oldID, ok := a.keyToID[key]; ok {
		a.graph.Delete(oldID)
		delete(a.idToKey, oldID)
		delete(a.meta, oldID)
	}
	id := a.graph.Insert(vec)
	a.idToKey[id] = key
	a.keyToID[key] = id
	a.meta[id] = m
}

func (a *ann) removeScreens(screenIDs []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	toRemove := map[string]bool{}
	for _, id := range screenIDs {
		toRemove[id] = true
	}
	for id, key := range a.idToKey {
		if toRemove[key.screenID] {
			a.graph.Delete(id)
		}
	}
}

type scoredEntry struct {
	key   vecKey
	meta  entryMeta
	score float32
}

func (a *ann) search(query []float32, k int) []scoredEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	raw := a.graph.Search(query, k)
	out := make([]scoredEntry, 0, len(raw))
	for _, r := range raw {
		key, ok := a.idToKey[r.id]
		if !ok {
			continue
		}
		out = append(out, scoredEntry{key: key, meta: a.meta[r.id], score: r.score})
	}
	return out
}

// SearchFilters restricts a search to a subset of elements (§4.6/§4.9).
type SearchFilters struct {
	Types         []model.ElementType
	ClickableOnly bool
	AppName       string
	ScreenID      string
}

// SearchResult is one (element, score) pair plus the owning screen
// header, as §4.6 requires.
type SearchResult struct {
	ScreenID     string
	ElementID    string
	ElementType  model.ElementType
	Text         string
	Clickable    bool
	ScreenRegion string
	App          string
	Score        float64
	Timestamp    time.Time
}

// Index is C6's core-exposed object.
type Index struct {
	store    *Store
	ann      *ann
	embedder embed.Embedder
	cache    *cache
	retentionDays int
	maxElements   int

	batchMu sync.Mutex // §5's shared retention lock

	log zerolog.Logger

	stopSweep chan struct{}
}

// Options configures a new Index.
type Options struct {
	RetentionDays        int
	MaxElements          int
	StaleCacheTTL         time.Duration
	CleanupInterval       time.Duration
}

// Open opens the store at dsn, rebuilds the in-memory ANN graph from it,
// and starts the cache + retention sweepers.
func Open(dsn string, embedder embed.Embedder, opts Options, log zerolog.Logger) (*Index, error) {
	store, err := openStore(dsn)
	if err != nil {
		return nil, err
	}

	graph := newANN()
	rows, err := store.AllEmbeddings()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("rebuild ann graph: %w", err)
	}
	for _, r := range rows {
		graph.insert(r.ScreenID, r.ElementID, r.Embedding, entryMeta{
			app: r.App, elementType: r.Type, clickable: r.Clickable,
			screenRegion: r.ScreenRegion, timestamp: r.Timestamp,
		})
	}

	idx := &Index{
		store:         store,
		ann:           graph,
		embedder:      embedder,
		cache:         newCache(opts.StaleCacheTTL),
		retentionDays: opts.RetentionDays,
		maxElements:   opts.MaxElements,
		log:           log,
		stopSweep:     make(chan struct{}),
	}

	go idx.cache.runSweeper(idx.stopSweep, opts.CleanupInterval, nil)
	go runRetentionSweeper(idx.stopSweep, opts.CleanupInterval, store, graph, &idx.batchMu,
		retentionPolicy{retentionDays: opts.RetentionDays, maxElements: opts.MaxElements}, time.Now, log)

	return idx, nil
}

func (idx *Index) Close() error {
	close(idx.stopSweep)
	return idx.store.Close()
}

// IndexScreenState embeds every element with non-empty text (unless
// skipEmbedding), then persists headers+elements together with those
// vectors in one write. Idempotent per screenId.
func (idx *Index) IndexScreenState(ctx context.Context, s *model.ScreenState, skipEmbedding bool) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	embeddings := map[string][]float32{}
	if !skipEmbedding {
		var texts []string
		var ids []string
		for _, el := range s.Elements {
			text := strings.TrimSpace(el.Text)
			if text == "" {
				continue
			}
			texts = append(texts, text)
			ids = append(ids, el.ID)
		}
		if len(texts) > 0 {
			vecs, err := idx.embedder.Embed(ctx, texts)
			if err != nil {
				idx.log.Warn().Err(err).Str("screen", s.ID).Msg("embed failed, indexing without vectors")
			} else {
				for i, v := range vecs {
					if vecNorm(v) == 0 {
						continue // zero vectors are rejected (§3 IndexEntry invariant)
					}
					embeddings[ids[i]] = v
				}
			}
		}
	}

	if err := idx.store.PutScreen(s, embeddings); err != nil {
		// Partial failure: remove any rows this attempt wrote.
		_ = idx.store.PurgeScreens([]string{s.ID})
		return err
	}

	for elID, vec := range embeddings {
		el, ok := s.ElementByID(elID)
		if !ok {
			continue
		}
		idx.ann.insert(s.ID, elID, vec, entryMeta{
			app: s.App, elementType: string(el.Type), clickable: el.Clickable,
			screenRegion: el.ScreenRegion, timestamp: s.Timestamp,
		})
	}

	s.HasEmbeddings = len(embeddings) > 0 || len(s.Elements) == 0
	idx.cache.put(&CacheEntry{ScreenID: s.ID, ScreenState: s, Timestamp: time.Now(), HasEmbeddings: s.HasEmbeddings})
	return nil
}

func vecNorm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return sum
}

// GenerateEmbeddingsForCached embeds a previously skip-embedded cache
// entry if it's still within staleCacheMs, per §4.7 step 8.
func (idx *Index) GenerateEmbeddingsForCached(ctx context.Context, screenID string) error {
	entry, ok := idx.cache.get(screenID, time.Now())
	if !ok {
		return errs.New(errs.StaleCache, "cache entry absent or expired")
	}
	if entry.HasEmbeddings {
		return nil
	}
	if err := idx.IndexScreenState(ctx, entry.ScreenState, false); err != nil {
		return err
	}
	idx.cache.markEmbedded(screenID)
	return nil
}

// Search embeds the query once and returns up to k candidates with
// score >= minScore, applying the optional filters.
func (idx *Index) Search(ctx context.Context, query string, k int, minScore float64, filters SearchFilters) ([]SearchResult, error) {
	vecs, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		return nil, errs.Wrap(errs.EmbedFailed, "embed query", err)
	}
	raw := idx.ann.search(vecs[0], k*5+20) // over-fetch before filtering

	out := make([]SearchResult, 0, k)
	for _, r := range raw {
		if float64(r.score) < minScore {
			continue
		}
		if filters.ClickableOnly && !r.meta.clickable {
			continue
		}
		if filters.AppName != "" && r.meta.app != filters.AppName {
			continue
		}
		if filters.ScreenID != "" && r.key.screenID != filters.ScreenID {
			continue
		}
		if len(filters.Types) > 0 && !typeIn(model.ElementType(r.meta.elementType), filters.Types) {
			continue
		}
		out = append(out, SearchResult{
			ScreenID: r.key.screenID, ElementID: r.key.elementID,
			ElementType: model.ElementType(r.meta.elementType),
			Clickable:   r.meta.clickable, ScreenRegion: r.meta.screenRegion,
			App: r.meta.app, Score: float64(r.score), Timestamp: r.meta.timestamp,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func typeIn(t model.ElementType, set []model.ElementType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

// PurgeScreens removes screens (and their elements/embeddings) matching
// predicate, atomically from the caller's point of view.
func (idx *Index) PurgeScreens(predicate func(screenID string) bool, candidateIDs []string) error {
	var toDelete []string
	for _, id := range candidateIDs {
		if predicate(id) {
			toDelete = append(toDelete, id)
		}
	}
	idx.batchMu.Lock()
	defer idx.batchMu.Unlock()
	if err := idx.store.PurgeScreens(toDelete); err != nil {
		return err
	}
	idx.ann.removeScreens(toDelete)
	return nil
}

// Stats reports counts/bytes/oldest-timestamp, plus the top-apps-by-
// screen-count breakdown this repo adds on top of the required fields.
func (idx *Index) Stats() (Stats, error) {
	return idx.store.Stats()
}

// AllScreenIDs returns every screen id currently stored, used by the
// purge command's "delete everything" mode.
func (idx *Index) AllScreenIDs() ([]string, error) {
	return idx.store.AllScreenIDs()
}
