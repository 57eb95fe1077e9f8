// Package winresolve implements C8, the Context Resolver: chooses which
// windows to analyze from a window set, and deduplicates candidates.
package winresolve

import "github.com/polzovatel/screenintel/internal/model"

// WindowInfo is one visible window as reported by the (out-of-scope)
// window-enumeration collaborator.
type WindowInfo struct {
	App   string
	Title string
	X, Y  int
	W, H  int
	URL   string
}

// Strategy is the closed set of resolution outcomes.
type Strategy string

const (
	StrategyFullscreenApp     Strategy = "fullscreen_app"
	StrategyMultiWindow       Strategy = "multi_window"
	StrategyFrontmostFallback Strategy = "frontmost_fallback"
	StrategyNoWindows         Strategy = "no_windows"
)

// Context is C8's output.
type Context struct {
	Strategy Strategy
	Primary  *WindowInfo
	Windows  []WindowInfo
}

const maxAnalyzedWindows = 5

// Resolve implements the ordered rules of §4.8: first match wins.
func Resolve(windows []WindowInfo, screen model.Dimensions) Context {
	if len(windows) == 0 {
		return Context{Strategy: StrategyNoWindows}
	}

	if len(windows) == 1 && isFullscreen(windows[0], screen) {
		w := windows[0]
		return Context{Strategy: StrategyFullscreenApp, Primary: &w, Windows: dedupeAndCap(windows)}
	}

	if primary, ok := multiFragmentFullscreen(windows, screen); ok {
		return Context{Strategy: StrategyFullscreenApp, Primary: primary, Windows: dedupeAndCap(windows)}
	}

	deduped := dedupeAndCap(windows)
	if len(deduped) == 0 {
		return Context{Strategy: StrategyNoWindows}
	}
	primary := deduped[0]
	return Context{Strategy: StrategyMultiWindow, Primary: &primary, Windows: deduped}
}

func isFullscreen(w WindowInfo, screen model.Dimensions) bool {
	return float64(w.W) >= 0.95*float64(screen.W) &&
		float64(w.H) >= 0.90*float64(screen.H) &&
		w.X <= 10 && w.Y <= 30
}

// multiFragmentFullscreen detects >=2 windows from the same app that
// together cover >= 0.85 of screen height, each full-width and near the
// top-left; primary is the tallest fragment.
func multiFragmentFullscreen(windows []WindowInfo, screen model.Dimensions) (*WindowInfo, bool) {
	byApp := map[string][]WindowInfo{}
	var apps []string
	for _, w := range windows {
		if _, ok := byApp[w.App]; !ok {
			apps = append(apps, w.App)
		}
		byApp[w.App] = append(byApp[w.App], w)
	}
	for _, app := range apps {
		frags := byApp[app]
		if len(frags) < 2 {
			continue
		}
		totalH := 0
		allQualify := true
		for _, f := range frags {
			if float64(f.W) < 0.95*float64(screen.W) || f.X > 10 || f.Y > 30 {
				allQualify = false
				break
			}
			totalH += f.H
		}
		if !allQualify || float64(totalH) < 0.85*float64(screen.H) {
			continue
		}
		tallest := frags[0]
		for _, f := range frags[1:] {
			if f.H > tallest.H {
				tallest = f
			}
		}
		return &tallest, true
	}
	return nil, false
}

// dedupeAndCap applies the deduplication rules of §4.8 then caps the
// result at maxAnalyzedWindows, in that order.
func dedupeAndCap(windows []WindowInfo) []WindowInfo {
	seenURL := map[string]bool{}
	seenAppTitle := map[string]bool{}
	var out []WindowInfo

	for _, w := range windows {
		isBrowser := looksLikeBrowser(w.App)
		switch {
		case isBrowser && w.URL != "":
			if seenURL[w.URL] {
				continue
			}
			seenURL[w.URL] = true
			out = append(out, w)
		case isBrowser && (w.URL == "" || w.Title == ""):
			// likely chrome UI surface, discard
			continue
		default:
			key := w.App + "\x00" + w.Title
			if seenAppTitle[key] {
				continue
			}
			seenAppTitle[key] = true
			out = append(out, w)
		}
	}
	if len(out) > maxAnalyzedWindows {
		out = out[:maxAnalyzedWindows]
	}
	return out
}

func looksLikeBrowser(app string) bool {
	switch app {
	case "Chrome", "Safari", "Firefox", "Edge", "Brave", "Arc":
		return true
	}
	return false
}
