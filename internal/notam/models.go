package notam

import (
	"strings"

	"github.com/skyops/tafboard/internal/upstream"
)

// StructuredNotam is a NOTAM telegram reconstructed into the standard
// ICAO 5-part layout. Missing fields stay blank rather than failing:
// the dashboard must always be able to render something per NOTAM.
type StructuredNotam struct {
	ID             string `json:"id"`   // e.g. "A0041/26"
	Type           string `json:"type"` // "NOTAMN" or "NOTAMR"; cancellations never surface
	Location       string `json:"location"`
	QLine          string `json:"q_line"`
	EffectiveStart string `json:"effective_start"` // YYMMDDHHMM
	EffectiveEnd   string `json:"effective_end"`   // YYMMDDHHMM or "PERM"
	Schedule       string `json:"schedule,omitempty"`
	Text           string `json:"text"` // E-line free text
	FullICAO       string `json:"full_icao,omitempty"`
	Status         string `json:"status,omitempty"`
	Runway         bool   `json:"runway"` // runway notice, ranked first per airport
}

// ICAOFormat renders the telegram in the conventional Q/A/B/C/D/E line
// layout for display.
func (n *StructuredNotam) ICAOFormat() string {
	var b strings.Builder
	b.WriteString(n.ID)
	b.WriteString(" ")
	b.WriteString(n.Type)
	if n.QLine != "" {
		b.WriteString("\nQ) ")
		b.WriteString(n.QLine)
	}
	b.WriteString("\nA) ")
	b.WriteString(n.Location)
	b.WriteString(" B) ")
	b.WriteString(n.EffectiveStart)
	b.WriteString(" C) ")
	b.WriteString(n.EffectiveEnd)
	if n.Schedule != "" {
		b.WriteString("\nD) ")
		b.WriteString(n.Schedule)
	}
	b.WriteString("\nE) ")
	b.WriteString(n.Text)
	return b.String()
}

// Result is the per-airport outcome of a batch NOTAM fetch. An airport
// with zero active NOTAMs is a success with an empty list, not an error.
type Result struct {
	Status upstream.Status   `json:"status"`
	Notams []StructuredNotam `json:"notams"`
	Err    *upstream.Error   `json:"-"`
}
