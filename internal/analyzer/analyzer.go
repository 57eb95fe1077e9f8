// Package analyzer implements C7, the Analyzer Orchestrator: it
// sequences C1->C6 per capture, enforces debounce/timing/skip flags, and
// reports a per-stage timing breakdown. Grounded on the teacher's
// Orchestrator.Run step loop (internal/agent/orchestrator.go): same
// per-stage structured logging, same "continue past a failed stage"
// posture, same context-deadline-per-stage pattern.
package analyzer

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/polzovatel/screenintel/internal/capture"
	"github.com/polzovatel/screenintel/internal/classify"
	"github.com/polzovatel/screenintel/internal/config"
	"github.com/polzovatel/screenintel/internal/describe"
	"github.com/polzovatel/screenintel/internal/errs"
	"github.com/polzovatel/screenintel/internal/layout"
	"github.com/polzovatel/screenintel/internal/model"
	"github.com/polzovatel/screenintel/internal/ocr"
	"github.com/polzovatel/screenintel/internal/ocrengine"
	"github.com/polzovatel/screenintel/internal/semindex"
	"github.com/polzovatel/screenintel/internal/uitree"
)

// WindowInfo is the minimal per-window context the orchestrator needs
// from the (out-of-scope) window-enumeration collaborator.
type WindowInfo struct {
	App         string
	WindowTitle string
	URL         string
	Bounds      capture.Bounds
	ScreenDims  model.Dimensions
	Filenames   []string
}

// Options mirrors the analyze(opts) shape of §4.7.
type Options struct {
	UserQuery     string
	SkipEmbedding bool
	SkipDetection bool
	Debounce      bool
}

// StageTiming records how long each pipeline stage took.
type StageTiming struct {
	Capture  time.Duration
	OCR      time.Duration
	Classify time.Duration
	Layout   time.Duration
	Tree     time.Duration
	Describe time.Duration
	Index    time.Duration
}

// Result is analyze()'s return value.
type Result struct {
	ScreenID   string
	Elements   []model.Element
	LLMContext string
	Notes      []string
	Timing     StageTiming
	Skipped    bool
}

// Orchestrator sequences the pipeline. One capture at a time per process
// (single-threaded cooperative at this level, per §5); the Semantic
// Index beneath it still serves concurrent embeds/searches.
type Orchestrator struct {
	cfg      config.Config
	capturer capture.Capturer
	ocr      ocrengine.OcrEngine
	index    *semindex.Index
	log      zerolog.Logger

	mu              sync.Mutex
	lastCaptureTime time.Time
}

func New(cfg config.Config, capturer capture.Capturer, ocrEngine ocrengine.OcrEngine, index *semindex.Index, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, capturer: capturer, ocr: ocrEngine, index: index, log: log}
}

// Analyze runs the full C1->C6 sequence for one window. Stage failures
// never abort the pipeline (§7): each stage degrades to an empty
// placeholder and a note is appended.
func (o *Orchestrator) Analyze(ctx context.Context, win WindowInfo, opts Options) (Result, error) {
	if opts.Debounce {
		o.mu.Lock()
		now := time.Now()
		if !o.lastCaptureTime.IsZero() && now.Sub(o.lastCaptureTime) < o.cfg.MinCaptureInterval() {
			o.mu.Unlock()
			return Result{Skipped: true, Notes: []string{"debounced"}}, nil
		}
		o.lastCaptureTime = now
		o.mu.Unlock()
	}

	var notes []string
	var timing StageTiming

	// 1. Capture.
	captureStart := time.Now()
	img, err := o.capturer.Capture(ctx, win.Bounds)
	timing.Capture = time.Since(captureStart)
	if err != nil {
		o.log.Warn().Err(err).Str("app", win.App).Msg("capture failed")
		notes = append(notes, "capture_failed")
		return o.finishEmpty(ctx, win, opts, notes, timing)
	}

	dims := win.ScreenDims
	if dims.W == 0 || dims.H == 0 {
		dims = model.Dimensions{W: img.Width, H: img.Height}
	}

	// 2-3. OCR + normalize.
	ocrStart := time.Now()
	ocrCtx, cancel := context.WithTimeout(ctx, o.cfg.OcrTimeout())
	ocrRes, err := o.ocr.Analyze(ocrCtx, nil)
	cancel()
	timing.OCR = time.Since(ocrStart)

	var words []model.Word
	if err != nil {
		o.log.Warn().Err(err).Str("app", win.App).Msg("ocr failed, continuing with zero words")
		notes = append(notes, "ocr_failed")
	} else {
		words, _ = ocr.Normalize(ocrRes, ocr.Options{MinWordConfidence: o.cfg.MinWordConfidence})
	}

	// 4. Classify (pure, must not fail).
	classifyStart := time.Now()
	canonicalW, canonicalH := o.cfg.CanonicalScreen()
	canonical := model.Dimensions{W: canonicalW, H: canonicalH}
	elements := make([]model.Element, 0, len(words))
	func() {
		defer func() {
			if r := recover(); r != nil {
				// Classification must be impossible to fail (§7
				// ClassifyError is a fatal InternalInvariant); a panic
				// here means a real bug, not a data problem.
				o.log.Error().Interface("panic", r).Msg("classifier invariant violated")
			}
		}()
		for _, w := range words {
			elements = append(elements, classify.Classify(w, dims, canonical))
		}
	}()
	timing.Classify = time.Since(classifyStart)

	// 5. Layout inference.
	layoutStart := time.Now()
	var layoutResult layout.Result
	if !opts.SkipDetection {
		lines := wordsToLines(words)
		layoutResult = layout.Infer(layout.DocTypeInput{
			App: win.App, WindowTitle: win.WindowTitle, URL: win.URL,
			Filenames: win.Filenames, Lines: lines,
		}, dims)
	}
	timing.Layout = time.Since(layoutStart)

	// 6. Build tree.
	treeStart := time.Now()
	screenID := uuid.NewString()
	builtElements, subtrees := uitree.Build(elements, screenID)
	timing.Tree = time.Since(treeStart)

	// 7. Describe.
	descStart := time.Now()
	state := &model.ScreenState{
		ID: screenID, Timestamp: time.Now(), App: win.App, WindowTitle: win.WindowTitle,
		URL: win.URL, ScreenDims: dims, Elements: builtElements, Subtrees: subtrees,
		DocType: layoutResult.DocType, Structures: layoutResult.Structures, Zones: layoutResult.Zones,
		Notes: notes,
	}
	byID := make(map[string]model.Element, len(builtElements))
	for _, e := range builtElements {
		byID[e.ID] = e
	}
	state.Description = describe.Screen(state)
	state.LLMContext = buildLLMContext(state, byID)
	timing.Describe = time.Since(descStart)

	// 8. Index.
	indexStart := time.Now()
	indexCtx, cancel := context.WithTimeout(ctx, o.cfg.IndexTimeout())
	err = o.index.IndexScreenState(indexCtx, state, opts.SkipEmbedding)
	cancel()
	timing.Index = time.Since(indexStart)
	if err != nil {
		o.log.Warn().Err(err).Str("screen", state.ID).Msg("index write failed")
		notes = append(notes, "index_write_failed")
		return Result{ScreenID: state.ID, Elements: state.Elements, LLMContext: state.LLMContext, Notes: notes, Timing: timing},
			errs.Wrap(errs.IndexWriteFailed, "index screen state", err)
	}

	return Result{ScreenID: state.ID, Elements: state.Elements, LLMContext: state.LLMContext, Notes: notes, Timing: timing}, nil
}

// finishEmpty runs C3..C6 on empty input after a capture failure, so the
// pipeline still returns a valid, empty ScreenState (§4.7, §7).
func (o *Orchestrator) finishEmpty(ctx context.Context, win WindowInfo, opts Options, notes []string, timing StageTiming) (Result, error) {
	screenID := uuid.NewString()
	state := &model.ScreenState{
		ID: screenID, Timestamp: time.Now(), App: win.App, WindowTitle: win.WindowTitle,
		URL: win.URL, ScreenDims: win.ScreenDims, Notes: notes,
	}
	layoutResult := layout.Infer(layout.DocTypeInput{App: win.App, WindowTitle: win.WindowTitle, URL: win.URL}, win.ScreenDims)
	state.DocType = layoutResult.DocType
	state.Structures = layoutResult.Structures
	state.Zones = layoutResult.Zones
	state.Description = describe.Screen(state)

	indexCtx, cancel := context.WithTimeout(ctx, o.cfg.IndexTimeout())
	defer cancel()
	_ = o.index.IndexScreenState(indexCtx, state, true)

	return Result{ScreenID: state.ID, Elements: nil, Notes: notes, Timing: timing}, nil
}

func wordsToLines(words []model.Word) []string {
	type lineKey = int
	byY := map[lineKey][]model.Word{}
	var ys []int
	for _, w := range words {
		y := w.BBox.Y1 / 10 * 10 // bucket into coarse rows
		if _, ok := byY[y]; !ok {
			ys = append(ys, y)
		}
		byY[y] = append(byY[y], w)
	}
	sort.Ints(ys)
	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		row := byY[y]
		sort.Slice(row, func(i, j int) bool { return row[i].BBox.X1 < row[j].BBox.X1 })
		var parts []string
		for _, w := range row {
			parts = append(parts, w.Text)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}

func buildLLMContext(s *model.ScreenState, byID map[string]model.Element) string {
	var b strings.Builder
	b.WriteString(s.Description)
	b.WriteString("\n")
	for _, st := range s.Subtrees {
		b.WriteString(describe.Subtree(st, byID, s.App))
		b.WriteString("\n")
	}
	return b.String()
}
