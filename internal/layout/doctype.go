package layout

import (
	"regexp"
	"strings"
)

// DocTypeInput is everything document-type detection can consult.
type DocTypeInput struct {
	App         string
	WindowTitle string
	URL         string
	Filenames   []string
	Lines       []string
}

var knownApps = map[string]string{
	"excel":      "spreadsheet",
	"numbers":    "spreadsheet",
	"sheets":     "spreadsheet",
	"vscode":     "code-editor",
	"code":       "code-editor",
	"xcode":      "code-editor",
	"intellij":   "code-editor",
	"mail":       "email",
	"outlook":    "email",
	"gmail":      "email",
	"slack":      "chat",
	"discord":    "chat",
	"terminal":   "terminal",
	"iterm2":     "terminal",
}

var titleSubstrings = []struct {
	substr  string
	docType string
}{
	{"inbox", "email"},
	{"compose", "email"},
	{" - google sheets", "spreadsheet"},
	{" - excel", "spreadsheet"},
	{"pull request", "code-review"},
}

var urlHostRules = []struct {
	re      *regexp.Regexp
	docType string
}{
	{regexp.MustCompile(`(?i)mail\.google\.com|outlook\.(live|office)\.com`), "email"},
	{regexp.MustCompile(`(?i)docs\.google\.com/spreadsheets`), "spreadsheet"},
	{regexp.MustCompile(`(?i)github\.com.*/pull/`), "code-review"},
	{regexp.MustCompile(`(?i)github\.com`), "code-repository"},
	{regexp.MustCompile(`(?i)youtube\.com`), "video-site"},
}

var fileExtDocTypes = []struct {
	ext     string
	docType string
}{
	{".go", "code-editor"}, {".py", "code-editor"}, {".js", "code-editor"},
	{".ts", "code-editor"}, {".rs", "code-editor"}, {".java", "code-editor"},
	{".xlsx", "spreadsheet"}, {".csv", "spreadsheet"},
	{".md", "markdown"},
}

var bulletRe = regexp.MustCompile(`^\s*([-*•]|\d+[.)]|[a-zA-Z][.)])\s+`)
var checkboxLineRe = regexp.MustCompile(`^\s*(\[[ xX]\]|[☐☑☒✓✗])`)

func normalizeAppKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectDocType runs the ordered rule set from §4.3, first match wins.
func DetectDocType(in DocTypeInput) string {
	if dt, ok := knownApps[normalizeAppKey(in.App)]; ok {
		return dt
	}

	lowerTitle := strings.ToLower(in.WindowTitle)
	for _, rule := range titleSubstrings {
		if strings.Contains(lowerTitle, rule.substr) {
			return rule.docType
		}
	}

	for _, rule := range urlHostRules {
		if rule.re.MatchString(in.URL) {
			return rule.docType
		}
	}

	for _, fn := range in.Filenames {
		lower := strings.ToLower(fn)
		for _, rule := range fileExtDocTypes {
			if strings.HasSuffix(lower, rule.ext) {
				return rule.docType
			}
		}
	}

	if dt, ok := detectByStructuralRatios(in.Lines); ok {
		return dt
	}

	if dt, ok := detectByTextSignature(in.Lines); ok {
		return dt
	}

	return "webpage"
}

func detectByStructuralRatios(lines []string) (string, bool) {
	n := len(lines)
	if n == 0 {
		return "", false
	}
	var codeLines, tableLines, headingLines, bulletLines, checkboxLines int
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		if looksLikeCode(trimmed) {
			codeLines++
		}
		if isTableRow(trimmed) {
			tableLines++
		}
		if looksLikeHeading(trimmed, i) {
			headingLines++
		}
		if bulletRe.MatchString(l) {
			bulletLines++
		}
		if checkboxLineRe.MatchString(l) {
			checkboxLines++
		}
	}
	ratio := func(c int) float64 { return float64(c) / float64(n) }

	if ratio(codeLines) > 0.3 {
		return "code-editor", true
	}
	if ratio(tableLines) > 0.5 {
		return "spreadsheet", true
	}
	if ratio(headingLines) > 0.1 && ratio(bulletLines) > 0.3 {
		return "markdown", true
	}
	if ratio(checkboxLines) > 0.2 {
		return "task-list", true
	}
	return "", false
}

var codeIndicatorRe = regexp.MustCompile(`[{}();]|^\s*(func|def|class|import|package|const|let|var)\b`)

func looksLikeCode(line string) bool {
	return codeIndicatorRe.MatchString(line)
}

func detectByTextSignature(lines []string) (string, bool) {
	joined := strings.ToLower(strings.Join(lines, "\n"))
	signatures := []struct {
		patterns []string
		docType  string
	}{
		{[]string{"subject:", "from:", "to:"}, "email"},
		{[]string{"commit", "pull request", "merge"}, "code-review"},
	}
	for _, sig := range signatures {
		matched := true
		for _, p := range sig.patterns {
			if !strings.Contains(joined, p) {
				matched = false
				break
			}
		}
		if matched {
			return sig.docType, true
		}
	}
	return "", false
}
