// Package uitree implements C4, the UI Tree Builder: it composes
// classified elements into a spatial tree by containment, detects
// subtrees, and assigns screen-region labels.
package uitree

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/polzovatel/screenintel/internal/model"
)

// Build places parent/child links on a copy of elements, derives
// screenRegion, and detects subtrees. Elements must already carry a
// NormalizedBBox (set by classify.Classify). idPrefix is the owning
// capture's id, used to keep element ids globally unique.
func Build(elements []model.Element, idPrefix string) ([]model.Element, []model.Subtree) {
	els := make([]model.Element, len(elements))
	copy(els, elements)
	for i := range els {
		if els[i].ID == "" {
			els[i].ID = idPrefix + "-" + uuid.NewString()
		}
	}

	order := make([]int, len(els))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return els[order[a]].BBox.Area() > els[order[b]].BBox.Area()
	})

	placed := make([]int, 0, len(els)) // indices into els, in placement order
	for _, idx := range order {
		candidate := els[idx].BBox
		bestParent := -1
		bestArea := -1
		for _, pIdx := range placed {
			pBox := els[pIdx].BBox
			if pIdx == idx || !pBox.Contains(candidate) || pBox == candidate {
				continue
			}
			area := pBox.Area()
			if bestParent == -1 || area < bestArea {
				bestParent = pIdx
				bestArea = area
			}
		}
		if bestParent != -1 {
			els[idx].ParentID = els[bestParent].ID
			els[bestParent].ChildIDs = append(els[bestParent].ChildIDs, els[idx].ID)
		}
		placed = append(placed, idx)
	}

	breakCycles(els)
	assignRegions(els)

	subtrees := detectSubtrees(els)
	return els, subtrees
}

// breakCycles re-parents any element whose parent chain re-enters itself
// back to root.
func breakCycles(els []model.Element) {
	byID := make(map[string]int, len(els))
	for i, e := range els {
		byID[e.ID] = i
	}
	for i := range els {
		visited := map[string]bool{els[i].ID: true}
		cur := els[i].ParentID
		cycle := false
		for cur != "" {
			if visited[cur] {
				cycle = true
				break
			}
			visited[cur] = true
			pIdx, ok := byID[cur]
			if !ok {
				break
			}
			cur = els[pIdx].ParentID
		}
		if cycle {
			removeChild(els, els[i].ParentID, els[i].ID)
			els[i].ParentID = ""
		}
	}
}

func removeChild(els []model.Element, parentID, childID string) {
	for i := range els {
		if els[i].ID != parentID {
			continue
		}
		out := els[i].ChildIDs[:0]
		for _, c := range els[i].ChildIDs {
			if c != childID {
				out = append(out, c)
			}
		}
		els[i].ChildIDs = out
		return
	}
}

func assignRegions(els []model.Element) {
	for i := range els {
		els[i].ScreenRegion = regionFor(els[i].NormalizedBBox)
	}
}

func regionFor(b model.BBox) string {
	cx, cy := b.CenterX(), b.CenterY()
	v := "middle"
	switch {
	case cy < 333:
		v = "top"
	case cy > 666:
		v = "bottom"
	}
	h := "center"
	switch {
	case cx < 333:
		h = "left"
	case cx > 666:
		h = "right"
	}
	return v + "-" + h
}

func detectSubtrees(els []model.Element) []model.Subtree {
	byID := make(map[string]model.Element, len(els))
	for _, e := range els {
		byID[e.ID] = e
	}

	var subtrees []model.Subtree
	for _, e := range els {
		if !e.Type.IsContainerLike() {
			continue
		}
		var childIDs []string
		collectDescendants(byID, e.ID, &childIDs)
		if len(childIDs) < 2 {
			continue
		}
		title := strings.TrimSpace(e.Text)
		if title == "" {
			title = topmostText(byID, childIDs)
		}
		subtrees = append(subtrees, model.Subtree{
			ID:            e.ID + "-subtree",
			Type:          e.Type,
			Title:         title,
			RootElementID: e.ID,
			ElementIDs:    append([]string{e.ID}, childIDs...),
			BBox:          e.BBox,
		})
	}
	return subtrees
}

func collectDescendants(byID map[string]model.Element, rootID string, out *[]string) {
	el, ok := byID[rootID]
	if !ok {
		return
	}
	for _, cid := range el.ChildIDs {
		*out = append(*out, cid)
		collectDescendants(byID, cid, out)
	}
}

func topmostText(byID map[string]model.Element, ids []string) string {
	var best model.Element
	found := false
	for _, id := range ids {
		e, ok := byID[id]
		if !ok || strings.TrimSpace(e.Text) == "" {
			continue
		}
		if !found || e.BBox.Y1 < best.BBox.Y1 {
			best = e
			found = true
		}
	}
	return best.Text
}
