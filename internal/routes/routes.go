// Package routes loads the flat-file route tables that drive the board:
// region to destination airports, destination to alternate airports, and
// region to enroute alternates (EDTO ERAs). Tables are loaded once per
// session and immutable for the duration of a refresh.
package routes

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/skyops/tafboard/pkg/logger"
)

// RegionAll selects every configured region at once.
const RegionAll = "ALL"

// ICAO 4-letter airport identifier.
var icaoRe = regexp.MustCompile(`^[A-Z]{4}$`)

// Tables holds the three immutable lookup tables.
type Tables struct {
	regionDestinations map[string][]string // region -> destination airports
	alternates         map[string][]string // destination -> alternate airports
	regionEnroute      map[string][]string // region -> enroute alternates
	logger             *logger.Logger
}

// Load reads and validates the three route files. Each line has the form
// "key,value1|value2|..."; a first line whose values are not valid ICAO
// codes is treated as a header and skipped.
func Load(regionsPath, alternatesPath, enroutePath string, log *logger.Logger) (*Tables, error) {
	tablesLogger := log.Named("routes")

	regions, err := loadMultimap(regionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load region table: %w", err)
	}
	alternates, err := loadMultimap(alternatesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load alternates table: %w", err)
	}
	enroute, err := loadMultimap(enroutePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load enroute alternates table: %w", err)
	}

	tablesLogger.Info("Route tables loaded",
		logger.Int("regions", len(regions)),
		logger.Int("destinations", len(alternates)),
		logger.Int("enroute_regions", len(enroute)))

	return &Tables{
		regionDestinations: regions,
		alternates:         alternates,
		regionEnroute:      enroute,
		logger:             tablesLogger,
	}, nil
}

// loadMultimap parses one delimited table file.
func loadMultimap(path string) (map[string][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table := make(map[string][]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		key, values, err := parseLine(line)
		if err != nil {
			if lineNum == 1 {
				continue // header line
			}
			return nil, fmt.Errorf("%s:%d: %w", path, lineNum, err)
		}
		table[key] = values
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

func parseLine(line string) (string, []string, error) {
	key, rest, found := strings.Cut(line, ",")
	if !found {
		return "", nil, fmt.Errorf("missing comma delimiter in %q", line)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil, fmt.Errorf("empty key in %q", line)
	}

	var values []string
	for _, raw := range strings.Split(rest, "|") {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if !icaoRe.MatchString(code) {
			return "", nil, fmt.Errorf("invalid ICAO code %q", code)
		}
		values = append(values, code)
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("no airport codes in %q", line)
	}

	return key, values, nil
}

// Regions returns the configured region names in sorted order.
func (t *Tables) Regions() []string {
	regions := make([]string, 0, len(t.regionDestinations))
	for region := range t.regionDestinations {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// HasRegion reports whether region is configured (or is "ALL").
func (t *Tables) HasRegion(region string) bool {
	if region == RegionAll {
		return true
	}
	_, ok := t.regionDestinations[region]
	if !ok {
		_, ok = t.regionEnroute[region]
	}
	return ok
}

// DestinationsForRegion returns the destination airports for a region,
// sorted. RegionAll spans every configured region.
func (t *Tables) DestinationsForRegion(region string) []string {
	if region == RegionAll {
		set := make(map[string]bool)
		for _, airports := range t.regionDestinations {
			for _, code := range airports {
				set[code] = true
			}
		}
		return sortedKeys(set)
	}
	return append([]string(nil), t.regionDestinations[region]...)
}

// AlternatesFor returns the configured alternates for a destination.
func (t *Tables) AlternatesFor(destination string) []string {
	return append([]string(nil), t.alternates[destination]...)
}

// EnrouteForRegion returns the enroute alternates for a region.
func (t *Tables) EnrouteForRegion(region string) []string {
	return append([]string(nil), t.regionEnroute[region]...)
}

// EnrouteRegions returns the regions with configured enroute
// alternates, sorted.
func (t *Tables) EnrouteRegions() []string {
	regions := make([]string, 0, len(t.regionEnroute))
	for region := range t.regionEnroute {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// DestinationSet returns the deduplicated union of all destinations
// and their alternates, sorted. This is the airport set one TAF batch
// request covers.
func (t *Tables) DestinationSet() []string {
	set := make(map[string]bool)
	for _, airports := range t.regionDestinations {
		for _, dest := range airports {
			set[dest] = true
			for _, alt := range t.alternates[dest] {
				set[alt] = true
			}
		}
	}
	return sortedKeys(set)
}

// EnrouteSet returns the deduplicated union of all enroute alternates
// across regions, sorted.
func (t *Tables) EnrouteSet() []string {
	set := make(map[string]bool)
	for _, airports := range t.regionEnroute {
		for _, code := range airports {
			set[code] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
