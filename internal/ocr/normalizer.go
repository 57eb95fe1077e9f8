// Package ocr implements C1, the OCR Normalizer: it turns the three
// heterogeneous shapes an OcrEngine can emit into a canonical Word
// stream with reconciled bboxes and confidences.
package ocr

import (
	"strings"

	"github.com/polzovatel/screenintel/internal/model"
	"github.com/polzovatel/screenintel/internal/ocrengine"
)

// Options configures normalization thresholds.
type Options struct {
	MinWordConfidence float64 // words below this confidence are dropped
}

// Normalize turns an OcrEngine result into a Word stream plus a flag
// saying whether any word carries a real (non-zero) bbox. It never
// panics or returns an error: if all three input shapes are unusable it
// returns an empty, bbox-less stream.
func Normalize(res ocrengine.Result, opts Options) ([]model.Word, bool) {
	if words := fromStructured(res.Structured); len(words) > 0 {
		return finish(words, opts)
	}
	if words := fromTabular(res.Tabular); len(words) > 0 {
		return finish(words, opts)
	}
	if strings.TrimSpace(res.BulkText) != "" {
		return finish(fromBulk(res.BulkText, res.Confidence), opts)
	}
	return nil, false
}

// fromStructured walks the block/paragraph/line hierarchy depth-first
// until it finds word-level nodes, without requiring every intermediate
// level to be present.
func fromStructured(nodes []ocrengine.StructuredNode) []model.Word {
	var out []model.Word
	var walk func(n ocrengine.StructuredNode)
	walk = func(n ocrengine.StructuredNode) {
		if n.Level == ocrengine.LevelWord || len(n.Words) > 0 {
			for _, w := range n.Words {
				out = append(out, model.Word{
					Text: w.Text,
					BBox: model.BBox{X1: w.BBox[0], Y1: w.BBox[1], X2: w.BBox[2], Y2: w.BBox[3]},
					Confidence: clamp01(w.Confidence),
				})
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// fromTabular accepts only word-level rows (the "level" field the spec
// requires to be configurable/respected).
func fromTabular(rows []ocrengine.TabularRow) []model.Word {
	var out []model.Word
	for _, r := range rows {
		if r.Level != ocrengine.LevelWord {
			continue
		}
		out = append(out, model.Word{
			Text: r.Text,
			BBox: model.BBox{X1: r.BBox[0], Y1: r.BBox[1], X2: r.BBox[2], Y2: r.BBox[3]},
			Confidence: clamp01(r.Confidence),
		})
	}
	return out
}

// fromBulk emits one synthetic, all-zero-bbox word per whitespace token.
func fromBulk(text string, overallConfidence float64) []model.Word {
	fields := strings.Fields(text)
	out := make([]model.Word, 0, len(fields))
	for _, f := range fields {
		out = append(out, model.Word{
			Text:       f,
			BBox:       model.BBox{},
			Confidence: clamp01(overallConfidence),
		})
	}
	return out
}

func finish(words []model.Word, opts Options) ([]model.Word, bool) {
	min := opts.MinWordConfidence
	if min == 0 {
		min = 0.5
	}
	out := make([]model.Word, 0, len(words))
	hasValidBBox := false
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		if w.Confidence < min {
			continue
		}
		w.Text = text
		if w.BBox.Valid() {
			hasValidBBox = true
		}
		out = append(out, w)
	}
	return out, hasValidBBox
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
