package layout

import (
	"regexp"
	"strings"

	"github.com/polzovatel/screenintel/internal/model"
)

var (
	priceRe      = regexp.MustCompile(`^\$?\d+(,\d{3})*(\.\d{2})?$`)
	dateRe       = regexp.MustCompile(`^\d{1,4}[-/]\d{1,2}[-/]\d{1,4}$`)
	boolRe       = regexp.MustCompile(`(?i)^(yes|no|true|false)$`)
	numericRe    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	percentRe    = regexp.MustCompile(`^-?\d+(\.\d+)?%$`)
	multiSpaceRe = regexp.MustCompile(` {2,}`)

	videoCardRe = regexp.MustCompile(`(?i)^\d+(\.\d+)?[km]?\s+views?\b`)
)

var navWordSet = map[string]bool{
	"home": true, "about": true, "contact": true, "services": true,
	"products": true, "blog": true, "shop": true, "login": true,
	"signup": true, "cart": true, "search": true, "menu": true,
	"settings": true, "profile": true, "help": true, "pricing": true,
}

var formWordSet = map[string]bool{
	"name": true, "email": true, "password": true, "username": true,
	"phone": true, "address": true, "submit": true, "required": true,
	"confirm": true, "city": true, "state": true, "zip": true,
}

// classifyCell infers a table cell's value type.
func classifyCell(text string) model.TableCellType {
	t := strings.TrimSpace(text)
	switch {
	case priceRe.MatchString(t):
		return model.CellPrice
	case dateRe.MatchString(t):
		return model.CellDate
	case boolRe.MatchString(t):
		return model.CellBoolean
	case percentRe.MatchString(t):
		return model.CellPercentage
	case numericRe.MatchString(t):
		return model.CellNumber
	default:
		return model.CellText
	}
}

func countMatches(tokens []string, re *regexp.Regexp) int {
	n := 0
	for _, t := range tokens {
		if re.MatchString(strings.TrimSpace(t)) {
			n++
		}
	}
	return n
}

// isTableRow reports whether a line looks like a row of tabular data:
// >=2 prices, >=2 dates, >=2 booleans, or >=3 numeric tokens.
func isTableRow(line string) bool {
	cells := splitColumns(line)
	if len(cells) < 2 {
		return false
	}
	if countMatches(cells, priceRe) >= 2 {
		return true
	}
	if countMatches(cells, dateRe) >= 2 {
		return true
	}
	if countMatches(cells, boolRe) >= 2 {
		return true
	}
	if countMatches(cells, numericRe) >= 3 {
		return true
	}
	return false
}

func splitColumns(line string) []string {
	parts := multiSpaceRe.Split(strings.TrimRight(line, " \t"), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func looksLikeHeading(line string, index int) bool {
	if index >= 10 {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 8 {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		return false
	}
	isAllCaps := line == strings.ToUpper(line) && strings.ToLower(line) != strings.ToUpper(line)
	return isAllCaps || index < 3
}

// videoSiteDocTypes are the doc types under which the video-card grid
// pattern is worth checking for; outside them a "14k views"-shaped line
// is just incidental text, not a video grid.
var videoSiteDocTypes = map[string]bool{
	"video-site": true,
}

// Extract runs the structural extraction pass of §4.3 over lines. Lines
// consumed by one structure are not re-emitted by another. docType gates
// the domain-specific grid patterns (e.g. video-card only applies on
// video-like sites, per §4.3).
func Extract(lines []string, docType string) model.Structures {
	consumed := make([]bool, len(lines))
	var out model.Structures

	// Tables: a run of >= 2 adjacent table rows.
	i := 0
	for i < len(lines) {
		if consumed[i] || !isTableRow(lines[i]) {
			i++
			continue
		}
		start := i
		for i < len(lines) && !consumed[i] && isTableRow(lines[i]) {
			i++
		}
		if i-start >= 2 {
			for j := start; j < i; j++ {
				consumed[j] = true
				cells := splitColumns(lines[j])
				types := make([]model.TableCellType, len(cells))
				for k, c := range cells {
					types[k] = classifyCell(c)
				}
				out.Tables = append(out.Tables, model.TableRow{Cells: cells, CellTypes: types})
			}
		}
	}

	// Navbars.
	for idx, line := range lines {
		if consumed[idx] {
			continue
		}
		tokens := strings.Fields(strings.ToLower(line))
		hits := 0
		for _, t := range tokens {
			if navWordSet[strings.Trim(t, ".,;:")] {
				hits++
			}
		}
		hasEvidence := strings.Contains(line, "http") || hasCapitalizedRun(line)
		if hits >= 3 || (hits >= 2 && hasEvidence) {
			consumed[idx] = true
			pos := model.NavMiddle
			if idx < 5 {
				pos = model.NavTop
			} else if idx > len(lines)-5 {
				pos = model.NavBottom
			}
			out.Navbars = append(out.Navbars, model.NavbarEntry{Lines: []string{line}, Position: pos})
		}
	}

	// Headers.
	for idx, line := range lines {
		if consumed[idx] {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !looksLikeHeading(trimmed, idx) {
			continue
		}
		consumed[idx] = true
		level := 3
		if idx == 0 {
			level = 1
		} else if idx < 3 {
			level = 2
		}
		out.Headers = append(out.Headers, model.HeaderEntry{Text: trimmed, Level: level, Line: idx})
	}

	// Lists: consecutive bullet/numbered/lettered lines.
	i = 0
	for i < len(lines) {
		if consumed[i] || !bulletRe.MatchString(lines[i]) {
			i++
			continue
		}
		start := i
		var runLines []string
		for i < len(lines) && !consumed[i] && bulletRe.MatchString(lines[i]) {
			runLines = append(runLines, lines[i])
			consumed[i] = true
			i++
		}
		out.Lists = append(out.Lists, model.ListEntry{Lines: runLines, StartLine: start})
	}

	// Grids: domain-specific (e.g. video-card) patterns, gated by doc
	// type so an incidental "14k views" line on a non-video page doesn't
	// fabricate a grid. Absence is not an error.
	if videoSiteDocTypes[docType] {
		i = 0
		for i < len(lines) {
			if consumed[i] || !videoCardRe.MatchString(strings.TrimSpace(lines[i])) {
				i++
				continue
			}
			start := i
			var runLines []string
			for i < len(lines) && !consumed[i] && videoCardRe.MatchString(strings.TrimSpace(lines[i])) {
				runLines = append(runLines, lines[i])
				consumed[i] = true
				i++
			}
			out.Grids = append(out.Grids, model.GridEntry{Lines: runLines, StartLine: start, Kind: "video-card"})
		}
	}

	// Forms: >= 2 form-word hits in a window of consecutive lines.
	const window = 5
	for idx := 0; idx < len(lines); idx++ {
		if consumed[idx] {
			continue
		}
		hits := 0
		end := idx + window
		if end > len(lines) {
			end = len(lines)
		}
		for j := idx; j < end; j++ {
			if consumed[j] {
				continue
			}
			tokens := strings.Fields(strings.ToLower(lines[j]))
			for _, t := range tokens {
				if formWordSet[strings.Trim(t, ".,;:")] {
					hits++
				}
			}
		}
		if hits >= 2 {
			var runLines []string
			for j := idx; j < end; j++ {
				if !consumed[j] {
					consumed[j] = true
					runLines = append(runLines, lines[j])
				}
			}
			out.Forms = append(out.Forms, model.FormEntry{Lines: runLines, StartLine: idx})
			idx = end - 1
		}
	}

	return out
}

func hasCapitalizedRun(line string) bool {
	words := strings.Fields(line)
	run := 0
	for _, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'A' && r[0] <= 'Z' {
			run++
			if run >= 2 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
