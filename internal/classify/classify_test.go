package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polzovatel/screenintel/internal/model"
)

var canonical = model.Dimensions{W: 2880, H: 1800}
var screen = model.Dimensions{W: 1440, H: 900}

func word(text string, x1, y1, x2, y2 int) model.Word {
	return model.Word{Text: text, BBox: model.BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: 0.9}
}

func TestClassify_MenuBarWord(t *testing.T) {
	el := Classify(word("File", 10, 5, 50, 20), screen, canonical)
	assert.Equal(t, model.TypeMenuItem, el.Type)
	assert.True(t, el.Clickable)
}

func TestClassify_URLText(t *testing.T) {
	el := Classify(word("https://example.com/path", 0, 200, 300, 220), screen, canonical)
	assert.Equal(t, model.TypeLink, el.Type)
	assert.True(t, el.Clickable)
}

func TestClassify_Email(t *testing.T) {
	el := Classify(word("user@example.com", 0, 200, 200, 220), screen, canonical)
	assert.Equal(t, model.TypeLink, el.Type)
}

func TestClassify_ActionButton(t *testing.T) {
	el := Classify(word("Submit", 100, 400, 200, 430), screen, canonical)
	assert.Equal(t, model.TypeButton, el.Type)
	assert.True(t, el.Clickable)
}

func TestClassify_DropdownGlyph(t *testing.T) {
	el := Classify(word("▼", 100, 400, 115, 415), screen, canonical)
	assert.Equal(t, model.TypeDropdown, el.Type)
}

func TestClassify_CheckboxGlyph(t *testing.T) {
	el := Classify(word("☑", 100, 400, 112, 412), screen, canonical)
	assert.Equal(t, model.TypeCheckbox, el.Type)
}

func TestClassify_LabelColon(t *testing.T) {
	el := Classify(word("Email:", 50, 300, 120, 320), screen, canonical)
	assert.Equal(t, model.TypeLabel, el.Type)
}

func TestClassify_FormFieldWord(t *testing.T) {
	el := Classify(word("Password", 50, 300, 150, 320), screen, canonical)
	assert.Equal(t, model.TypeLabel, el.Type)
}

func TestClassify_Heading(t *testing.T) {
	el := Classify(word("Welcome back", 20, 100, 220, 130), screen, canonical)
	assert.Equal(t, model.TypeHeading, el.Type)
}

func TestClassify_Icon(t *testing.T) {
	el := Classify(word("x", 10, 10, 30, 30), screen, canonical)
	assert.Equal(t, model.TypeIcon, el.Type)
}

func TestClassify_Badge(t *testing.T) {
	el := Classify(word("42%", 10, 10, 70, 70), screen, canonical)
	assert.Equal(t, model.TypeBadge, el.Type)
}

func TestClassify_DefaultText(t *testing.T) {
	el := Classify(word("The quick brown fox jumps over a lazy dog today", 10, 10, 400, 30), screen, canonical)
	assert.Equal(t, model.TypeText, el.Type)
	assert.False(t, el.Clickable)
}

func TestClassify_IsPure(t *testing.T) {
	w := word("Submit", 100, 400, 200, 430)
	a := Classify(w, screen, canonical)
	b := Classify(w, screen, canonical)
	assert.Equal(t, a, b)
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	b := model.BBox{X1: 100, Y1: 200, X2: 300, Y2: 400}
	norm := normalize(b, screen, canonical)
	require.True(t, norm.X1 >= 0 && norm.X1 <= 999)
	require.True(t, norm.Y2 >= 0 && norm.Y2 <= 999)

	back := Denormalize(norm, screen, canonical)
	// Integer scaling is lossy; round trip should land within a few pixels.
	assert.InDelta(t, b.X1, back.X1, 2)
	assert.InDelta(t, b.Y1, back.Y1, 2)
	assert.InDelta(t, b.X2, back.X2, 2)
	assert.InDelta(t, b.Y2, back.Y2, 2)
}

func TestNormalizeFallsBackToCanonicalWhenScreenUnknown(t *testing.T) {
	b := model.BBox{X1: 100, Y1: 100, X2: 200, Y2: 200}
	norm := normalize(b, model.Dimensions{}, canonical)
	assert.NotZero(t, norm)
}
