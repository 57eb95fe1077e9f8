package layout

import "github.com/polzovatel/screenintel/internal/model"

// Result is C3's combined output.
type Result struct {
	DocType    string
	Structures model.Structures
	Zones      model.Zones
}

// Infer runs document-type detection followed by structural extraction
// and zone derivation, in that order, per §4.3.
func Infer(in DocTypeInput, dims model.Dimensions) Result {
	docType := DetectDocType(in)
	structs := Extract(in.Lines, docType)
	zones := DeriveZones(dims, structs)
	return Result{DocType: docType, Structures: structs, Zones: zones}
}
