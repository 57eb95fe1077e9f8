package winresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polzovatel/screenintel/internal/model"
)

var screen = model.Dimensions{W: 1440, H: 900}

func TestResolve_NoWindows(t *testing.T) {
	ctx := Resolve(nil, screen)
	assert.Equal(t, StrategyNoWindows, ctx.Strategy)
}

func TestResolve_SingleFullscreenWindow(t *testing.T) {
	w := WindowInfo{App: "Xcode", X: 0, Y: 0, W: 1440, H: 900}
	ctx := Resolve([]WindowInfo{w}, screen)
	require.Equal(t, StrategyFullscreenApp, ctx.Strategy)
	require.NotNil(t, ctx.Primary)
	assert.Equal(t, "Xcode", ctx.Primary.App)
}

func TestResolve_MultiFragmentFullscreen(t *testing.T) {
	windows := []WindowInfo{
		{App: "VSCode", X: 0, Y: 0, W: 1440, H: 500},
		{App: "VSCode", X: 0, Y: 0, W: 1440, H: 400},
	}
	ctx := Resolve(windows, screen)
	require.Equal(t, StrategyFullscreenApp, ctx.Strategy)
	require.NotNil(t, ctx.Primary)
	assert.Equal(t, 500, ctx.Primary.H) // tallest fragment wins
}

func TestResolve_MultiFragmentFullscreen_FirstQualifyingAppWinsDeterministically(t *testing.T) {
	// Two different apps both qualify as multi-fragment-fullscreen; the
	// app whose fragments appear first in the input must always win.
	windows := []WindowInfo{
		{App: "VSCode", X: 0, Y: 0, W: 1440, H: 500},
		{App: "VSCode", X: 0, Y: 0, W: 1440, H: 400},
		{App: "Terminal", X: 0, Y: 0, W: 1440, H: 450},
		{App: "Terminal", X: 0, Y: 0, W: 1440, H: 450},
	}
	for i := 0; i < 10; i++ {
		ctx := Resolve(windows, screen)
		require.Equal(t, StrategyFullscreenApp, ctx.Strategy)
		require.NotNil(t, ctx.Primary)
		assert.Equal(t, "VSCode", ctx.Primary.App)
	}
}

func TestResolve_MultiWindowOrdinary(t *testing.T) {
	windows := []WindowInfo{
		{App: "Finder", Title: "Downloads", X: 100, Y: 100, W: 600, H: 400},
		{App: "Mail", Title: "Inbox", X: 700, Y: 100, W: 600, H: 400},
	}
	ctx := Resolve(windows, screen)
	assert.Equal(t, StrategyMultiWindow, ctx.Strategy)
	assert.Len(t, ctx.Windows, 2)
}

func TestDedupeAndCap_BrowserURLDedup(t *testing.T) {
	windows := []WindowInfo{
		{App: "Chrome", Title: "Tab 1", URL: "https://example.com"},
		{App: "Chrome", Title: "Tab 1 (dup)", URL: "https://example.com"},
		{App: "Chrome", Title: "Tab 2", URL: "https://other.com"},
	}
	out := dedupeAndCap(windows)
	assert.Len(t, out, 2)
}

func TestDedupeAndCap_DiscardsBrowserWindowMissingURLOrTitle(t *testing.T) {
	windows := []WindowInfo{
		{App: "Chrome", Title: "", URL: ""},
		{App: "Finder", Title: "Downloads"},
	}
	out := dedupeAndCap(windows)
	require.Len(t, out, 1)
	assert.Equal(t, "Finder", out[0].App)
}

func TestDedupeAndCap_CapsAtFive(t *testing.T) {
	var windows []WindowInfo
	for i := 0; i < 8; i++ {
		windows = append(windows, WindowInfo{App: "App", Title: string(rune('A' + i))})
	}
	out := dedupeAndCap(windows)
	assert.Len(t, out, 5)
}

func TestDedupeAndCap_NonBrowserDedupByAppAndTitle(t *testing.T) {
	windows := []WindowInfo{
		{App: "Finder", Title: "Downloads"},
		{App: "Finder", Title: "Downloads"},
	}
	out := dedupeAndCap(windows)
	assert.Len(t, out, 1)
}
