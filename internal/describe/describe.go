// Package describe implements C5, the Description Generator: node,
// subtree and screen-level text suitable for downstream embedding.
// Every function is deterministic: stable ordering by element id
// whenever ties would otherwise be ambiguous.
package describe

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/polzovatel/screenintel/internal/model"
)

const maxNodeDescLen = 512

// typeName renders an ElementType as a human-readable label.
func typeName(t model.ElementType) string {
	return string(t)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

func domainOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// ParentPath builds the `>`-joined chain of ancestor element texts from
// root down to (but excluding) el itself.
func ParentPath(el model.Element, byID map[string]model.Element) string {
	var chain []string
	cur := el.ParentID
	seen := map[string]bool{}
	for cur != "" && !seen[cur] {
		seen[cur] = true
		p, ok := byID[cur]
		if !ok {
			break
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			text = typeName(p.Type)
		}
		chain = append([]string{text}, chain...)
		cur = p.ParentID
	}
	return strings.Join(chain, " > ")
}

// Node renders a single-line description of one element.
func Node(el model.Element, byID map[string]model.Element, app, pageURL string) string {
	var b strings.Builder
	b.WriteString(capitalize(typeName(el.Type)))
	if text := strings.TrimSpace(el.Text); text != "" {
		fmt.Fprintf(&b, " %q", text)
	}
	if el.ScreenRegion != "" {
		fmt.Fprintf(&b, " in %s", el.ScreenRegion)
	}
	if path := ParentPath(el, byID); path != "" {
		fmt.Fprintf(&b, " within %s", path)
	}
	if app != "" {
		fmt.Fprintf(&b, " on %s", app)
	}
	if d := domainOf(pageURL); d != "" {
		fmt.Fprintf(&b, " at %s", d)
	}
	if el.Clickable {
		b.WriteString(" (clickable)")
	}
	out := b.String()
	if len(out) > maxNodeDescLen {
		out = out[:maxNodeDescLen]
	}
	return out
}

// Subtree renders a description for one container subtree.
func Subtree(st model.Subtree, byID map[string]model.Element, app string) string {
	counts := map[model.ElementType]int{}
	interactive := 0
	for _, id := range st.ElementIDs {
		e, ok := byID[id]
		if !ok {
			continue
		}
		counts[e.Type]++
		if e.Interactive {
			interactive++
		}
	}
	top := topNTypeCounts(counts, 3)

	title := st.Title
	if title == "" {
		title = typeName(st.Type)
	}
	return fmt.Sprintf("%s titled %q containing %s with %d interactive elements in %s",
		capitalize(typeName(st.Type)), title, top, interactive, app)
}

// Screen renders a whole-screen description.
func Screen(s *model.ScreenState) string {
	byID := make(map[string]model.Element, len(s.Elements))
	for _, e := range s.Elements {
		byID[e.ID] = e
	}

	subtreeTypes := map[model.ElementType]bool{}
	for _, st := range s.Subtrees {
		subtreeTypes[st.Type] = true
	}

	textCount, buttonCount, inputCount := 0, 0, 0
	for _, e := range s.Elements {
		switch e.Type {
		case model.TypeText, model.TypeLabel, model.TypeHeading:
			textCount++
		case model.TypeButton:
			buttonCount++
		case model.TypeInput:
			inputCount++
		}
	}

	notable := notableButtons(s.Elements, 5)

	d := domainOf(s.URL)
	return fmt.Sprintf("%s window showing %q%s with %d regions containing %d text, %d button, %d input%s",
		s.App, s.WindowTitle, atDomain(d), len(subtreeTypes), textCount, buttonCount, inputCount, includingButtons(notable))
}

func atDomain(d string) string {
	if d == "" {
		return ""
	}
	return " at " + d
}

func includingButtons(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return " including " + strings.Join(names, ", ")
}

func notableButtons(els []model.Element, n int) []string {
	var buttons []model.Element
	for _, e := range els {
		if e.Type == model.TypeButton {
			buttons = append(buttons, e)
		}
	}
	sort.Slice(buttons, func(i, j int) bool { return buttons[i].ID < buttons[j].ID })
	if len(buttons) > n {
		buttons = buttons[:n]
	}
	out := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if strings.TrimSpace(b.Text) != "" {
			out = append(out, b.Text)
		}
	}
	return out
}

func topNTypeCounts(counts map[model.ElementType]int, n int) string {
	type pair struct {
		t model.ElementType
		c int
	}
	pairs := make([]pair, 0, len(counts))
	for t, c := range counts {
		pairs = append(pairs, pair{t, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].c != pairs[j].c {
			return pairs[i].c > pairs[j].c
		}
		return pairs[i].t < pairs[j].t
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%d %s", p.c, typeName(p.t)))
	}
	return strings.Join(parts, ", ")
}
