package taf

import (
	"time"

	"github.com/skyops/tafboard/internal/upstream"
)

// Category identifies a hazard condition flagged in a TAF report.
type Category string

const (
	CategoryLowVisibility        Category = "low_visibility"
	CategoryLowCeiling           Category = "low_ceiling"
	CategoryUnmeasuredVisibility Category = "unmeasured_visibility"
	CategoryFreezing             Category = "freezing"
	CategorySnow                 Category = "snow"
)

// Visibility below this many meters is flagged as LowVisibility.
const LowVisibilityMeters = 3000

// Ceiling (BKN/OVC) below this many feet is flagged as LowCeiling.
const LowCeilingFeet = 1000

// RawRecord is a single airport's raw TAF text as returned by the
// upstream service. Immutable once created; replaced every refresh cycle.
type RawRecord struct {
	AirportCode string    `json:"airport_code"`
	Text        string    `json:"text"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// FetchResult is the per-airport outcome of a batch TAF fetch.
// Exactly one of Record/Err is populated depending on Status.
type FetchResult struct {
	Status upstream.Status `json:"status"`
	Record *RawRecord      `json:"record,omitempty"`
	Err    *upstream.Error `json:"-"`
}

// Segment is one time-indexed group of a TAF report (the header line,
// or an FM/BECMG/TEMPO/PROB change group), classified independently so
// highlighting reflects the specific time window.
type Segment struct {
	Kind       string              `json:"kind"` // "HEADER", "FM", "BECMG", "TEMPO", "PROB"
	Text       string              `json:"text"`
	Categories map[Category]string `json:"categories,omitempty"` // category -> matched token
}

// AnnotatedRecord is a classified TAF report: the original text plus
// the hazard categories matched per segment and overall.
type AnnotatedRecord struct {
	Raw        string              `json:"raw"`
	Segments   []Segment           `json:"segments"`
	Categories map[Category]string `json:"categories,omitempty"` // union across segments
}

// Significant reports whether any hazard category was flagged.
func (r *AnnotatedRecord) Significant() bool {
	return r != nil && len(r.Categories) > 0
}
