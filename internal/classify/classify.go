// Package classify implements C2, the Element Classifier: a pure
// function from an OCR Word to a typed, classified Element. It never
// reads global state and never suspends.
package classify

import (
	"regexp"
	"strings"

	"github.com/polzovatel/screenintel/internal/model"
)

var actionWords = map[string]bool{
	"sign in": true, "submit": true, "save": true, "cancel": true,
	"buy now": true, "log in": true, "sign up": true, "register": true,
	"continue": true, "next": true, "back": true, "ok": true, "apply": true,
	"delete": true, "confirm": true, "close": true, "send": true,
}

var clickableWords = map[string]bool{
	"click": true, "download": true, "share": true, "next": true,
	"previous": true, "more": true, "view": true, "open": true, "go": true,
}

var dropdownKeywords = map[string]bool{
	"select": true, "choose": true, "pick": true, "all": true, "any": true, "none": true,
}

var dropdownGlyphs = map[string]bool{
	"▼": true, "▽": true, "⌄": true, "˅": true,
}

var checkboxGlyphs = map[string]bool{
	"✓": true, "✗": true, "☐": true, "☑": true, "☒": true, "◯": true, "●": true,
}

var menuBarWords = map[string]bool{
	"file": true, "edit": true, "view": true, "window": true, "help": true,
	"tools": true, "format": true, "insert": true, "table": true, "data": true,
	"extensions": true, "preferences": true,
}

var navWords = map[string]bool{
	"home": true, "about": true, "contact": true, "services": true,
	"products": true, "blog": true, "support": true, "settings": true,
	"profile": true, "dashboard": true, "account": true, "menu": true,
	"more": true, "tab": true, "blocks": true, "drive": true,
}

var formFieldWords = map[string]bool{
	"email": true, "password": true, "username": true, "first name": true,
	"last name": true, "phone": true, "address": true, "city": true,
	"state": true, "zip": true, "country": true,
}

var (
	urlOrEmailRe = regexp.MustCompile(`^(https?://|www\.)[^\s]+$|^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	menuCapsRe   = regexp.MustCompile(`^[A-Z][a-z]{2,12}$`)
	badgeRe      = regexp.MustCompile(`^\d+(\.\d+)?(%|px|em|rem|pt|°)?$`)
)

// Classify assigns a type, clickability and normalized bbox to a single
// OCR word. Same input always yields the same output.
func Classify(w model.Word, screen model.Dimensions, canonical model.Dimensions) model.Element {
	el := model.Element{
		Text:           w.Text,
		BBox:           w.BBox,
		OCRConfidence:  w.Confidence,
		Visible:        true,
		NormalizedBBox: normalize(w.BBox, screen, canonical),
	}

	lower := strings.ToLower(strings.TrimSpace(w.Text))
	width := w.BBox.Width()
	height := w.BBox.Height()
	aspect := aspectRatio(width, height)
	y := w.BBox.Y1

	switch {
	case actionWords[lower]:
		el.Type = model.TypeButton
		// The button-geometry check is evaluated but does not change the
		// type or any confidence field: the action-word match alone decides.
		_ = aspect >= 1.5 && aspect <= 10 && width >= 40 && width <= 300

	case dropdownGlyphs[w.Text] || dropdownKeywords[lower]:
		el.Type = model.TypeDropdown

	case len([]rune(w.Text)) == 1 && checkboxGlyphs[w.Text]:
		el.Type = model.TypeCheckbox

	case urlOrEmailRe.MatchString(strings.TrimSpace(w.Text)):
		el.Type = model.TypeLink

	case isMenuItem(w.Text, lower, y, width):
		el.Type = model.TypeMenuItem

	case strings.HasSuffix(strings.TrimSpace(w.Text), ":") || formFieldWords[lower]:
		el.Type = model.TypeLabel

	case len(w.Text) <= 60 && height > 20 && startsWithCapital(w.Text) && aspect > 2:
		el.Type = model.TypeHeading

	case len([]rune(w.Text)) <= 3 && width < 50 && height < 50:
		el.Type = model.TypeIcon

	case badgeRe.MatchString(strings.TrimSpace(w.Text)):
		el.Type = model.TypeBadge

	default:
		el.Type = model.TypeText
	}

	el.Clickable = isClickable(el.Type, lower, w.BBox, aspect)
	el.Interactive = el.Clickable
	return el
}

func isMenuItem(text, lower string, y, width int) bool {
	trimmed := strings.TrimSpace(text)
	if strings.Contains(trimmed, " ") || len(trimmed) > 15 {
		return false
	}
	if menuBarWords[lower] && y < 50 {
		return true
	}
	if navWords[lower] {
		return true
	}
	if menuCapsRe.MatchString(trimmed) && y < 50 && width > 20 && width < 100 {
		return true
	}
	return false
}

func startsWithCapital(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return r >= 'A' && r <= 'Z'
}

func aspectRatio(width, height int) float64 {
	if height == 0 {
		return 0
	}
	return float64(width) / float64(height)
}

func isClickable(t model.ElementType, lower string, bbox model.BBox, aspect float64) bool {
	switch t {
	case model.TypeButton, model.TypeLink, model.TypeDropdown, model.TypeCheckbox, model.TypeMenuItem, model.TypeIcon:
		return true
	}
	if clickableWords[lower] {
		return true
	}
	words := len(strings.Fields(lower))
	width := bbox.Width()
	if aspect >= 1.5 && aspect <= 10 && width >= 40 && width <= 300 && words >= 1 && words <= 3 {
		return true
	}
	return false
}

// normalize scales a bbox into the canonical 0..999 integer range
// relative to the capture's screen dimensions, falling back to the
// configured canonical screen size when the real dimensions are unknown.
func normalize(b model.BBox, screen, canonical model.Dimensions) model.BBox {
	w, h := screen.W, screen.H
	if w <= 0 || h <= 0 {
		w, h = canonical.W, canonical.H
	}
	if w <= 0 || h <= 0 {
		return model.BBox{}
	}
	return model.BBox{
		X1: scale(b.X1, w),
		Y1: scale(b.Y1, h),
		X2: scale(b.X2, w),
		Y2: scale(b.Y2, h),
	}
}

func scale(coord, dim int) int {
	if dim == 0 {
		return 0
	}
	v := (coord * 999) / dim
	if v < 0 {
		return 0
	}
	if v > 999 {
		return 999
	}
	return v
}

// Denormalize reverses normalize, used by the normalization round-trip
// test property.
func Denormalize(b model.BBox, screen, canonical model.Dimensions) model.BBox {
	w, h := screen.W, screen.H
	if w <= 0 || h <= 0 {
		w, h = canonical.W, canonical.H
	}
	return model.BBox{
		X1: b.X1 * w / 999,
		Y1: b.Y1 * h / 999,
		X2: b.X2 * w / 999,
		Y2: b.Y2 * h / 999,
	}
}
