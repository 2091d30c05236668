package board

import (
	"time"

	"github.com/skyops/tafboard/internal/notam"
	"github.com/skyops/tafboard/internal/taf"
	"github.com/skyops/tafboard/internal/upstream"
)

// AirportWeather is the per-airport display unit: a classified TAF, an
// explicit no-data marker, or an error marker. Stale or missing data is
// always distinguishable from actively-bad-weather data.
type AirportWeather struct {
	Airport string               `json:"airport"`
	Status  upstream.Status      `json:"status"`
	TAF     *taf.AnnotatedRecord `json:"taf,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// Significant reports whether the airport's forecast flagged any hazard.
func (w *AirportWeather) Significant() bool {
	return w.TAF.Significant()
}

// DestinationRow is one row of the destinations table: a destination
// airport, its alternates, and its active NOTAMs (runway notices first).
type DestinationRow struct {
	Airport     string                  `json:"airport"`
	Destination AirportWeather          `json:"destination"`
	Alternates  []AirportWeather        `json:"alternates"`
	Notams      []notam.StructuredNotam `json:"notams,omitempty"`
	NotamError  string                  `json:"notam_error,omitempty"`
	Region      string                  `json:"region"`
}

// EnrouteRow is one row of the EDTO ERA table: a region and its enroute
// alternates.
type EnrouteRow struct {
	Region   string           `json:"region"`
	Airports []AirportWeather `json:"airports"`
}

// Snapshot is the complete, immutable output of one refresh cycle.
// A new snapshot replaces the previous one wholesale; nothing is
// persisted across runs.
type Snapshot struct {
	GeneratedAt  time.Time        `json:"generated_at"`
	Destinations []DestinationRow `json:"destinations"`
	Enroute      []EnrouteRow     `json:"enroute"`
}

// Filter returns a copy of the snapshot narrowed to one region (or all
// when region is "ALL" or empty) and, optionally, to airports with
// significant weather only. The receiver is never modified.
func (s *Snapshot) Filter(region string, significantOnly bool) *Snapshot {
	filtered := &Snapshot{GeneratedAt: s.GeneratedAt}

	for _, row := range s.Destinations {
		if region != "" && region != "ALL" && row.Region != region {
			continue
		}
		if significantOnly && !row.Destination.Significant() {
			continue
		}
		filtered.Destinations = append(filtered.Destinations, row)
	}

	for _, row := range s.Enroute {
		if region != "" && region != "ALL" && row.Region != region {
			continue
		}
		if !significantOnly {
			filtered.Enroute = append(filtered.Enroute, row)
			continue
		}
		kept := EnrouteRow{Region: row.Region}
		for _, airport := range row.Airports {
			if airport.Significant() {
				kept.Airports = append(kept.Airports, airport)
			}
		}
		if len(kept.Airports) > 0 {
			filtered.Enroute = append(filtered.Enroute, kept)
		}
	}

	return filtered
}

// AirportTAF finds the weather entry for one airport anywhere in the
// snapshot (destination, alternate, or enroute alternate).
func (s *Snapshot) AirportTAF(code string) (AirportWeather, bool) {
	for _, row := range s.Destinations {
		if row.Destination.Airport == code {
			return row.Destination, true
		}
		for _, alt := range row.Alternates {
			if alt.Airport == code {
				return alt, true
			}
		}
	}
	for _, row := range s.Enroute {
		for _, airport := range row.Airports {
			if airport.Airport == code {
				return airport, true
			}
		}
	}
	return AirportWeather{}, false
}

// AirportNotams returns the active NOTAMs for a destination airport.
func (s *Snapshot) AirportNotams(code string) ([]notam.StructuredNotam, bool) {
	for _, row := range s.Destinations {
		if row.Airport == code {
			return row.Notams, true
		}
	}
	return nil, false
}
