// Package model defines the shared data types that flow through the
// screen-understanding pipeline: words coming out of OCR, classified
// elements, subtrees, and the immutable ScreenState that the Semantic
// Index ultimately owns.
package model

import "time"

// BBox is an axis-aligned bounding box in screen pixel coordinates,
// [x1,y1,x2,y2] with x2>=x1 and y2>=y1.
type BBox struct {
	X1, Y1, X2, Y2 int
}

// Valid reports whether the box has non-negative extents and at least one
// non-zero coordinate (the spec's definition of a "valid" bbox).
func (b BBox) Valid() bool {
	if b.X2 < b.X1 || b.Y2 < b.Y1 {
		return false
	}
	return b.X1 != 0 || b.Y1 != 0 || b.X2 != 0 || b.Y2 != 0
}

// Width and Height return the box's pixel extents.
func (b BBox) Width() int  { return b.X2 - b.X1 }
func (b BBox) Height() int { return b.Y2 - b.Y1 }

// Area returns the box's pixel area.
func (b BBox) Area() int { return b.Width() * b.Height() }

// Contains reports whether b strictly contains other (b's edges at or
// beyond other's on every side).
func (b BBox) Contains(other BBox) bool {
	return b.X1 <= other.X1 && b.Y1 <= other.Y1 && b.X2 >= other.X2 && b.Y2 >= other.Y2
}

// CenterX and CenterY return the box's midpoint.
func (b BBox) CenterX() int { return (b.X1 + b.X2) / 2 }
func (b BBox) CenterY() int { return (b.Y1 + b.Y2) / 2 }

// Dimensions describes a screen's pixel size.
type Dimensions struct {
	W, H int
}

// Word is one token produced by OCR normalization (C1).
type Word struct {
	Text       string
	BBox       BBox
	Confidence float64 // in [0,1]
}

// ElementType is the closed set of UI roles C2 can assign.
type ElementType string

const (
	TypeButton    ElementType = "button"
	TypeLink      ElementType = "link"
	TypeInput     ElementType = "input"
	TypeDropdown  ElementType = "dropdown"
	TypeCheckbox  ElementType = "checkbox"
	TypeMenuItem  ElementType = "menu-item"
	TypeLabel     ElementType = "label"
	TypeHeading   ElementType = "heading"
	TypeIcon      ElementType = "icon"
	TypeBadge     ElementType = "badge"
	TypeText      ElementType = "text"
	TypeImage     ElementType = "image"
	TypeTable     ElementType = "table"
	TypeList      ElementType = "list"
	TypeForm      ElementType = "form"
	TypeContainer ElementType = "container"
	TypeSection   ElementType = "section"
	TypeDialog    ElementType = "dialog"
	TypeUnknown   ElementType = "unknown"
)

// IsContainerLike returns whether a type is eligible to root a Subtree
// (C4 step 5).
func (t ElementType) IsContainerLike() bool {
	switch t {
	case TypeDialog, TypeContainer, TypeSection:
		return true
	}
	return false
}

// Element is one classified, spatially placed UI node.
type Element struct {
	ID                  string
	Type                ElementType
	Text                string
	BBox                BBox
	NormalizedBBox      BBox
	Clickable           bool
	Interactive         bool
	Visible             bool
	Confidence          float64
	DetectionConfidence float64
	OCRConfidence       float64
	ParentID            string
	ChildIDs            []string
	ScreenRegion        string
	Attributes          map[string]string
	Source              string
}

// Subtree groups a container element with its spatial descendants.
type Subtree struct {
	ID            string
	Type          ElementType
	Title         string
	RootElementID string
	ElementIDs    []string
	BBox          BBox
	Description   string
}

// Zone is a non-overlapping top-level screen partition.
type Zone struct {
	X, Y, W, H int
}

// Zones partitions the screen into header/sidebar/main/footer regions.
// Main is always present; the others are optional.
type Zones struct {
	Header *Zone
	Sidebar *Zone
	Main   Zone
	Footer *Zone
}

// TableCellType classifies a single extracted table cell.
type TableCellType string

const (
	CellPrice      TableCellType = "price"
	CellDate       TableCellType = "date"
	CellBoolean    TableCellType = "boolean"
	CellNumber     TableCellType = "number"
	CellPercentage TableCellType = "percentage"
	CellText       TableCellType = "text"
)

// TableRow is one extracted row of a detected table.
type TableRow struct {
	Cells     []string
	CellTypes []TableCellType
}

// NavPosition is where on the screen a detected navbar sits.
type NavPosition string

const (
	NavTop    NavPosition = "top"
	NavBottom NavPosition = "bottom"
	NavMiddle NavPosition = "middle"
)

// NavbarEntry is one detected navigation bar.
type NavbarEntry struct {
	Lines    []string
	Position NavPosition
}

// HeaderEntry is one detected heading line.
type HeaderEntry struct {
	Text  string
	Level int
	Line  int
}

// ListEntry is one detected run of bullet/numbered/lettered lines.
type ListEntry struct {
	Lines     []string
	StartLine int
}

// GridEntry is one detected domain-specific grid (e.g. a video-card grid).
type GridEntry struct {
	Lines     []string
	StartLine int
	Kind      string
}

// FormEntry is one detected form-field run.
type FormEntry struct {
	Lines     []string
	StartLine int
}

// Structures holds every structural extraction C3 produced.
type Structures struct {
	Tables  []TableRow
	Navbars []NavbarEntry
	Lists   []ListEntry
	Grids   []GridEntry
	Forms   []FormEntry
	Headers []HeaderEntry
}

// ScreenState is the immutable record produced by one capture's pipeline
// pass. It is mutated only to lazily attach embeddings once they become
// available; every other field is fixed at construction.
type ScreenState struct {
	ID             string
	Timestamp      time.Time
	App            string
	WindowTitle    string
	URL            string
	ScreenDims     Dimensions
	Elements       []Element
	Subtrees       []Subtree
	Description    string
	LLMContext     string
	DocType        string
	Structures     Structures
	Zones          Zones
	Notes          []string
	HasEmbeddings  bool
}

// ElementByID returns the element with the given id, if present.
func (s *ScreenState) ElementByID(id string) (Element, bool) {
	for _, e := range s.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}
