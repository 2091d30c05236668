package notam

import (
	"regexp"
	"sort"
	"strings"
)

// typeCodeCancel marks a NOTAMC, which cancels a previous notice and
// must never be shown as active.
const typeCodeCancel = "C"

// Runway designator in free text: the RWY/RUNWAY keyword followed by a
// two-digit heading with an optional L/R/C suffix.
var runwayRe = regexp.MustCompile(`\b(?:RWY|RUNWAY)\s*\d{2}[LRC]?\b`)

// dateSeparatorsRe strips ISO timestamp punctuation before squashing to
// the ICAO YYMMDDHHMM form.
var dateSeparatorsRe = regexp.MustCompile(`[-:TZ]`)

// notamPayload is the upstream representation of one NOTAM before
// structuring. Field names follow the FAA response attributes.
type notamPayload struct {
	Series         string `json:"series"`
	Number         string `json:"number"`
	Year           string `json:"year"`
	Type           string `json:"type"`
	Location       string `json:"location"`
	EffectiveStart string `json:"effectiveStart"`
	EffectiveEnd   string `json:"effectiveEnd"`
	Text           string `json:"text"`
	QCode          string `json:"qCode"`
	Schedule       string `json:"schedule"`
	Status         string `json:"status"`
}

// structure reconstructs the ICAO layout from a raw FAA payload.
// Best effort by design: absent fields stay blank and one malformed
// NOTAM never affects the others in the batch.
func structure(p notamPayload, formatted string) StructuredNotam {
	n := StructuredNotam{
		ID:             FormatID(p.Series, p.Number, p.Year),
		Type:           "NOTAM" + strings.TrimSpace(p.Type),
		Location:       strings.TrimSpace(p.Location),
		QLine:          strings.TrimSpace(p.QCode),
		EffectiveStart: ICAODate(p.EffectiveStart),
		EffectiveEnd:   ICAODate(p.EffectiveEnd),
		Schedule:       strings.TrimSpace(p.Schedule),
		Text:           strings.TrimSpace(p.Text),
		FullICAO:       strings.TrimSpace(formatted),
		Status:         p.Status,
	}
	n.Runway = runwayRe.MatchString(n.Text) || runwayRe.MatchString(n.FullICAO)
	return n
}

// FormatID builds the canonical "SeriesLetter+Number/Year" identifier.
// The raw number may already carry the series prefix and a year suffix
// (e.g. "A0041/26"); both are stripped before reassembly.
func FormatID(series, rawNumber, rawYear string) string {
	series = strings.TrimSpace(series)
	number := strings.TrimSpace(rawNumber)
	if series != "" && strings.HasPrefix(number, series) {
		number = number[len(series):]
	}
	if i := strings.Index(number, "/"); i >= 0 {
		number = number[:i]
	}

	year := strings.TrimSpace(rawYear)
	if len(year) > 2 {
		year = year[len(year)-2:]
	}

	return series + number + "/" + year
}

// ICAODate squashes an ISO-style timestamp into the ICAO YYMMDDHHMM
// form. An absent end date means a permanent NOTAM.
func ICAODate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "PERM"
	}
	clean := dateSeparatorsRe.ReplaceAllString(value, "")
	if len(clean) < 12 {
		return clean
	}
	return clean[2:12]
}

// SortRunwayFirst orders runway notices before all other NOTAMs for the
// same airport, preserving upstream order within each group.
func SortRunwayFirst(notams []StructuredNotam) {
	sort.SliceStable(notams, func(i, j int) bool {
		return notams[i].Runway && !notams[j].Runway
	})
}
