// Package ocrengine defines the external OCR collaborator and the three
// output shapes C1 (internal/ocr) knows how to normalize. Grounded on the
// Blocks -> Paragraphs -> Lines -> Words hierarchy used by full-featured
// OCR SDKs for structured results, a flat tabular shape for engines that
// only emit a token table, and a bulk-text fallback.
package ocrengine

import "context"

// Level marks which hierarchy tier a structured node sits at.
type Level string

const (
	LevelBlock     Level = "block"
	LevelParagraph Level = "paragraph"
	LevelLine      Level = "line"
	LevelWord      Level = "word"
)

// StructuredWord is a leaf word node with its own bbox/confidence.
type StructuredWord struct {
	Text       string
	BBox       [4]int
	Confidence float64
}

// StructuredNode is one level of the block/paragraph/line/word hierarchy.
// Only Words is populated at the word level; Children holds the next
// level down otherwise. Engines are free to omit intermediate levels
// (e.g. go straight from Block to Word).
type StructuredNode struct {
	Level    Level
	Children []StructuredNode
	Words    []StructuredWord
}

// TabularRow is one row of a delimited tabular OCR output: one row per
// recognized token, with an explicit Level column so the normalizer can
// select only word-level rows.
type TabularRow struct {
	Level      Level
	Text       string
	BBox       [4]int
	Confidence float64
}

// Result is everything an OcrEngine.Analyze call can return. At most one
// of Structured/Tabular/BulkText need be populated; the normalizer tries
// them in that preference order.
type Result struct {
	Structured []StructuredNode
	Tabular    []TabularRow
	BulkText   string

	Text       string
	Confidence float64 // overall engine confidence, used for BulkText fallback
	Source     string
}

// OcrEngine is the external OCR collaborator.
type OcrEngine interface {
	Analyze(ctx context.Context, img []byte) (Result, error)
}
