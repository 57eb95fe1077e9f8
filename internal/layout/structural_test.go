package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polzovatel/screenintel/internal/model"
)

func TestExtract_Table(t *testing.T) {
	lines := []string{
		"$12.00   $34.00   $56.00",
		"$78.00   $90.00   $11.00",
	}
	structs := Extract(lines, "webpage")
	require.Len(t, structs.Tables, 2)
	assert.Equal(t, model.CellPrice, structs.Tables[0].CellTypes[0])
	assert.Equal(t, model.CellPrice, structs.Tables[1].CellTypes[2])
}

func TestExtract_Headers(t *testing.T) {
	lines := []string{"QUARTERLY REPORT", "this is just some regular body text."}
	structs := Extract(lines, "webpage")
	require.Len(t, structs.Headers, 1)
	assert.Equal(t, "QUARTERLY REPORT", structs.Headers[0].Text)
	assert.Equal(t, 1, structs.Headers[0].Level)
}

func TestExtract_List(t *testing.T) {
	// The first three lines get padded with punctuation-terminated filler
	// so they aren't swept up by the early-lines heading heuristic, which
	// would otherwise claim the bullet lines for Headers instead of Lists.
	lines := []string{
		"Intro line one.",
		"Intro line two.",
		"Intro line three.",
		"- first item",
		"- second item",
		"- third item",
	}
	structs := Extract(lines, "webpage")
	require.Len(t, structs.Lists, 1)
	assert.Len(t, structs.Lists[0].Lines, 3)
}

func TestExtract_LinesNotDoubleConsumed(t *testing.T) {
	lines := []string{
		"$12.00   $34.00   $56.00",
		"$78.00   $90.00   $11.00",
		"$11.00   $22.00   $33.00",
		"- trailing bullet",
	}
	structs := Extract(lines, "webpage")
	assert.Len(t, structs.Tables, 3)
	require.Len(t, structs.Lists, 1)
	assert.Equal(t, "- trailing bullet", structs.Lists[0].Lines[0])
}

func TestExtract_VideoCardGridGatedByDocType(t *testing.T) {
	// Punctuation-terminated filler keeps the early-lines heading heuristic
	// from claiming the view-count lines before the grid pass runs.
	lines := []string{
		"Intro line one.",
		"Intro line two.",
		"Intro line three.",
		"14k views",
		"2.1m views",
	}

	structs := Extract(lines, "webpage")
	assert.Empty(t, structs.Grids, "a non-video doc type must not fabricate a video-card grid")

	structs = Extract(lines, "video-site")
	require.Len(t, structs.Grids, 1)
	assert.Equal(t, "video-card", structs.Grids[0].Kind)
}

func TestClassifyCell(t *testing.T) {
	assert.Equal(t, model.CellPrice, classifyCell("$12.00"))
	assert.Equal(t, model.CellDate, classifyCell("2026-07-31"))
	assert.Equal(t, model.CellBoolean, classifyCell("yes"))
	assert.Equal(t, model.CellPercentage, classifyCell("42%"))
	assert.Equal(t, model.CellNumber, classifyCell("17"))
	assert.Equal(t, model.CellText, classifyCell("widget"))
}
