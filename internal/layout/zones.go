package layout

import "github.com/polzovatel/screenintel/internal/model"

const (
	headerHeightFrac  = 0.08
	footerHeightFrac  = 0.06
	sidebarWidthFrac  = 0.18
)

// DeriveZones partitions the screen deterministically from which
// structures were detected: a header zone exists iff a top navbar or
// headers exist; a sidebar exists iff a middle-positioned navbar exists;
// a footer exists iff a bottom navbar exists. Main always fills the rest.
func DeriveZones(dims model.Dimensions, structs model.Structures) model.Zones {
	hasTopNav, hasMiddleNav, hasBottomNav := false, false, false
	for _, nb := range structs.Navbars {
		switch nb.Position {
		case model.NavTop:
			hasTopNav = true
		case model.NavMiddle:
			hasMiddleNav = true
		case model.NavBottom:
			hasBottomNav = true
		}
	}
	hasHeader := hasTopNav || len(structs.Headers) > 0
	hasSidebar := hasMiddleNav
	hasFooter := hasBottomNav

	headerH := 0
	if hasHeader {
		headerH = int(float64(dims.H) * headerHeightFrac)
	}
	footerH := 0
	if hasFooter {
		footerH = int(float64(dims.H) * footerHeightFrac)
	}
	sidebarW := 0
	if hasSidebar {
		sidebarW = int(float64(dims.W) * sidebarWidthFrac)
	}

	z := model.Zones{
		Main: model.Zone{
			X: sidebarW,
			Y: headerH,
			W: dims.W - sidebarW,
			H: dims.H - headerH - footerH,
		},
	}
	if hasHeader {
		z.Header = &model.Zone{X: 0, Y: 0, W: dims.W, H: headerH}
	}
	if hasSidebar {
		z.Sidebar = &model.Zone{X: 0, Y: headerH, W: sidebarW, H: dims.H - headerH - footerH}
	}
	if hasFooter {
		z.Footer = &model.Zone{X: 0, Y: dims.H - footerH, W: dims.W, H: footerH}
	}
	return z
}
