package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polzovatel/screenintel/internal/ocrengine"
)

func TestNormalize_Structured(t *testing.T) {
	res := ocrengine.Result{
		Structured: []ocrengine.StructuredNode{
			{
				Level: ocrengine.LevelBlock,
				Children: []ocrengine.StructuredNode{
					{
						Level: ocrengine.LevelLine,
						Words: []ocrengine.StructuredWord{
							{Text: "Submit", BBox: [4]int{10, 10, 60, 30}, Confidence: 0.9},
							{Text: "", BBox: [4]int{0, 0, 0, 0}, Confidence: 0.9},
						},
					},
				},
			},
		},
	}
	words, hasBBox := Normalize(res, Options{MinWordConfidence: 0.5})
	require.Len(t, words, 1)
	assert.Equal(t, "Submit", words[0].Text)
	assert.True(t, hasBBox)
}

func TestNormalize_PrefersStructuredOverTabular(t *testing.T) {
	res := ocrengine.Result{
		Structured: []ocrengine.StructuredNode{
			{Level: ocrengine.LevelWord, Words: []ocrengine.StructuredWord{
				{Text: "A", BBox: [4]int{0, 0, 10, 10}, Confidence: 0.9},
			}},
		},
		Tabular: []ocrengine.TabularRow{
			{Level: ocrengine.LevelWord, Text: "B", BBox: [4]int{0, 0, 10, 10}, Confidence: 0.9},
		},
	}
	words, _ := Normalize(res, Options{})
	require.Len(t, words, 1)
	assert.Equal(t, "A", words[0].Text)
}

func TestNormalize_TabularFiltersNonWordLevel(t *testing.T) {
	res := ocrengine.Result{
		Tabular: []ocrengine.TabularRow{
			{Level: ocrengine.LevelLine, Text: "whole line", BBox: [4]int{0, 0, 100, 20}, Confidence: 0.9},
			{Level: ocrengine.LevelWord, Text: "whole", BBox: [4]int{0, 0, 40, 20}, Confidence: 0.9},
		},
	}
	words, _ := Normalize(res, Options{})
	require.Len(t, words, 1)
	assert.Equal(t, "whole", words[0].Text)
}

func TestNormalize_BulkFallback(t *testing.T) {
	res := ocrengine.Result{BulkText: "hello world", Confidence: 0.8}
	words, hasBBox := Normalize(res, Options{})
	require.Len(t, words, 2)
	assert.Equal(t, "hello", words[0].Text)
	assert.Equal(t, "world", words[1].Text)
	assert.False(t, hasBBox) // bulk words carry zero bboxes
}

func TestNormalize_DropsLowConfidenceWords(t *testing.T) {
	res := ocrengine.Result{
		Tabular: []ocrengine.TabularRow{
			{Level: ocrengine.LevelWord, Text: "keep", BBox: [4]int{0, 0, 10, 10}, Confidence: 0.9},
			{Level: ocrengine.LevelWord, Text: "drop", BBox: [4]int{0, 0, 10, 10}, Confidence: 0.1},
		},
	}
	words, _ := Normalize(res, Options{MinWordConfidence: 0.5})
	require.Len(t, words, 1)
	assert.Equal(t, "keep", words[0].Text)
}

func TestNormalize_AllUnusable(t *testing.T) {
	words, hasBBox := Normalize(ocrengine.Result{}, Options{})
	assert.Nil(t, words)
	assert.False(t, hasBBox)
}
