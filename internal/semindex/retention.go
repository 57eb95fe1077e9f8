// retention.go implements the background retention sweeper (§5, §4.6):
// deletes screens older than retentionDays, and if the element count
// exceeds maxElements, deletes oldest screens first until back under the
// limit. Runs in bounded batches so a single sweep pause stays short.
package semindex

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const retentionBatchSize = 200

type retentionPolicy struct {
	retentionDays int
	maxElements   int
}

// sweepOnce performs one retention pass: age-based deletion, then
// element-count-based deletion. batchMu is the "shared lock that blocks
// new writes but not reads" from §5 — held only for the duration of each
// batch, not the whole sweep.
func sweepOnce(store *Store, idx *ann, batchMu *sync.Mutex, policy retentionPolicy, now time.Time, log zerolog.Logger) {
	cutoff := now.AddDate(0, 0, -policy.retentionDays)

	ids, err := store.ScreenIDsOlderThan(cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("retention: list expired screens failed")
		return
	}
	deleteInBatches(store, idx, batchMu, ids, log)

	stats, err := store.Stats()
	if err != nil {
		log.Warn().Err(err).Msg("retention: stats failed")
		return
	}
	if policy.maxElements <= 0 || stats.ElementCount <= policy.maxElements {
		return
	}
	over := stats.ElementCount - policy.maxElements
	// Each screen holds an unknown number of elements, so screens are
	// purged one at a time and the budget re-checked after each purge —
	// purging a whole batch could overshoot and evict more than needed.
	for over > 0 {
		batch, err := store.OldestScreensFirst(1)
		if err != nil || len(batch) == 0 {
			return
		}
		deleteInBatches(store, idx, batchMu, batch, log)
		stats, err = store.Stats()
		if err != nil {
			return
		}
		over = stats.ElementCount - policy.maxElements
	}
}

func deleteInBatches(store *Store, idx *ann, batchMu *sync.Mutex, ids []string, log zerolog.Logger) {
	for start := 0; start < len(ids); start += retentionBatchSize {
		end := start + retentionBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		batchMu.Lock()
		err := store.PurgeScreens(batch)
		if err == nil {
			idx.removeScreens(batch)
		}
		batchMu.Unlock()

		if err != nil {
			log.Warn().Err(err).Strs("screens", batch).Msg("retention: purge batch failed, retrying once")
			batchMu.Lock()
			err = store.PurgeScreens(batch)
			if err == nil {
				idx.removeScreens(batch)
			}
			batchMu.Unlock()
			if err != nil {
				log.Warn().Err(err).Msg("retention: purge batch abandoned after retry")
			}
		}
	}
}

// runRetentionSweeper starts a ticker-driven retention loop.
func runRetentionSweeper(stop <-chan struct{}, interval time.Duration, store *Store, idx *ann, batchMu *sync.Mutex, policy retentionPolicy, nowFn func() time.Time, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sweepOnce(store, idx, batchMu, policy, nowFn(), log)
		}
	}
}
