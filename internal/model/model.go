package model

import "time"

type FlowType string

const (
	FlowImports FlowType = "Total Imports"
	FlowExports FlowType = "Total Exports"
)

// Metadata fields packed into the first column of a FIGARO TSV row, in order.
const (
	FieldFreq   = "freq"
	FieldNaceR2 = "nace_r2"
	FieldCExp   = "c_exp"
	FieldUnit   = "unit"
	FieldGeo    = "geo"
)

var MetadataFields = []string{FieldFreq, FieldNaceR2, FieldCExp, FieldUnit, FieldGeo}

type FlowRecord struct {
	IndustryCode string   `json:"industry_code"`
	FlowType     FlowType `json:"flow_type"`
	Value        float64  `json:"value"`
}

type Run struct {
	ID          string
	Provider    string
	Year        int
	RecordCount int
	CreatedAt   time.Time
}
