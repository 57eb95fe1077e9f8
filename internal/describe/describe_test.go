package describe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polzovatel/screenintel/internal/model"
)

func TestNode_IncludesTextRegionAndParent(t *testing.T) {
	byID := map[string]model.Element{
		"parent": {ID: "parent", Type: model.TypeSection, Text: "Sidebar"},
	}
	el := model.Element{
		ID: "child", Type: model.TypeButton, Text: "Submit",
		ScreenRegion: "top-left", ParentID: "parent", Clickable: true,
	}
	desc := Node(el, byID, "Mail", "https://mail.google.com/mail/u/0")
	assert.Contains(t, desc, "Button")
	assert.Contains(t, desc, `"Submit"`)
	assert.Contains(t, desc, "top-left")
	assert.Contains(t, desc, "Sidebar")
	assert.Contains(t, desc, "Mail")
	assert.Contains(t, desc, "mail.google.com")
	assert.Contains(t, desc, "(clickable)")
}

func TestNode_TruncatesToMaxLength(t *testing.T) {
	el := model.Element{Type: model.TypeText, Text: strings.Repeat("a", 1000)}
	desc := Node(el, map[string]model.Element{}, "", "")
	assert.LessOrEqual(t, len(desc), maxNodeDescLen)
}

func TestParentPath_BuildsChainFromRoot(t *testing.T) {
	byID := map[string]model.Element{
		"root": {ID: "root", Text: "Dialog", ParentID: ""},
		"mid":  {ID: "mid", Text: "Panel", ParentID: "root"},
	}
	el := model.Element{ID: "leaf", ParentID: "mid"}
	path := ParentPath(el, byID)
	assert.Equal(t, "Dialog > Panel", path)
}

func TestParentPath_CycleDoesNotHang(t *testing.T) {
	byID := map[string]model.Element{
		"a": {ID: "a", Text: "A", ParentID: "b"},
		"b": {ID: "b", Text: "B", ParentID: "a"},
	}
	el := model.Element{ID: "leaf", ParentID: "a"}
	path := ParentPath(el, byID) // must terminate
	assert.NotEmpty(t, path)
}

func TestSubtree_Description(t *testing.T) {
	byID := map[string]model.Element{
		"btn1": {ID: "btn1", Type: model.TypeButton, Interactive: true},
		"btn2": {ID: "btn2", Type: model.TypeButton, Interactive: true},
		"txt1": {ID: "txt1", Type: model.TypeText},
	}
	st := model.Subtree{Type: model.TypeDialog, Title: "Confirm", ElementIDs: []string{"btn1", "btn2", "txt1"}}
	desc := Subtree(st, byID, "Finder")
	assert.Contains(t, desc, "Dialog")
	assert.Contains(t, desc, `"Confirm"`)
	assert.Contains(t, desc, "2 interactive")
	assert.Contains(t, desc, "Finder")
}

func TestScreen_Description(t *testing.T) {
	s := &model.ScreenState{
		App: "Finder", WindowTitle: "Downloads", URL: "",
		Elements: []model.Element{
			{ID: "a", Type: model.TypeButton, Text: "Open"},
			{ID: "b", Type: model.TypeText, Text: "hello"},
		},
		Subtrees: []model.Subtree{{Type: model.TypeDialog}},
	}
	desc := Screen(s)
	assert.Contains(t, desc, "Finder")
	assert.Contains(t, desc, `"Downloads"`)
	assert.Contains(t, desc, "1 regions")
	assert.Contains(t, desc, "1 text")
	assert.Contains(t, desc, "1 button")
	assert.Contains(t, desc, "including Open")
}
