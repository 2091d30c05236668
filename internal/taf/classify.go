package taf

import (
	"regexp"
	"strconv"
	"strings"
)

// Lexical rules for hazard classification. TAF groups follow a fixed
// token grammar, so per-token pattern matching is both sufficient and
// auditable against literal example strings.
var (
	// Bare 4-digit group is horizontal visibility in meters (9999 = unlimited).
	visibilityRe = regexp.MustCompile(`^(\d{4})$`)

	// Broken/overcast cloud group with height in hundreds of feet,
	// optionally carrying a CB/TCU convective suffix.
	cloudRe = regexp.MustCompile(`^(BKN|OVC)(\d{3})(?:CB|TCU)?$`)

	// Vertical visibility group: VV/// when the sensor cannot resolve
	// a value, VVddd for an obscured-sky ceiling.
	verticalVisRe = regexp.MustCompile(`^VV(?:///|\d{3})$`)

	// Freezing rain/drizzle, with optional intensity and proximity prefixes.
	freezingRe = regexp.MustCompile(`^[-+]?(?:VC)?(?:SH|TS)?FZ(?:RA|DZ)$`)

	// Snow phenomenon group, including derivatives such as -SN, +SHSN,
	// BLSN, SNRA. Weather groups concatenate fixed 2-letter codes.
	snowRe = regexp.MustCompile(`^[-+]?(?:VC)?(?:MI|BC|PR|DR|BL|SH|TS|FZ)*SN(?:RA|DZ|PL|GR|GS)*$`)

	// Change-group markers that open a new time-indexed segment. FM
	// groups appear as FMDDHHMM in current reports and FMHHMM in older
	// ones; both open a segment.
	fmMarkerRe   = regexp.MustCompile(`^FM\d{4}(?:\d{2})?$`)
	probMarkerRe = regexp.MustCompile(`^PROB\d{2}$`)
)

// Classify applies the hazard rules to a raw TAF report. It is a pure
// function of the text: identical input always yields identical output.
// Each change group (FM/BECMG/TEMPO/PROB) is classified independently.
func Classify(text string) AnnotatedRecord {
	segments := splitSegments(text)

	union := make(map[Category]string)
	for i := range segments {
		segments[i].Categories = classifyTokens(strings.Fields(segments[i].Text))
		for cat, token := range segments[i].Categories {
			if _, ok := union[cat]; !ok {
				union[cat] = token
			}
		}
	}

	record := AnnotatedRecord{
		Raw:      text,
		Segments: segments,
	}
	if len(union) > 0 {
		record.Categories = union
	}
	return record
}

// splitSegments breaks a TAF report into its header and change groups.
// A PROBnn marker absorbs an immediately following TEMPO into the same
// segment, matching how the two tokens qualify one time window.
func splitSegments(text string) []Segment {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	var segments []Segment
	current := Segment{Kind: "HEADER"}
	var currentTokens []string

	flush := func() {
		if len(currentTokens) > 0 {
			current.Text = strings.Join(currentTokens, " ")
			segments = append(segments, current)
		}
	}

	prevWasProb := false
	for _, token := range tokens {
		kind := markerKind(token)
		if kind != "" && !(kind == "TEMPO" && prevWasProb) {
			flush()
			current = Segment{Kind: kind}
			currentTokens = currentTokens[:0]
		}
		currentTokens = append(currentTokens, token)
		prevWasProb = kind == "PROB"
	}
	flush()

	return segments
}

func markerKind(token string) string {
	switch {
	case fmMarkerRe.MatchString(token):
		return "FM"
	case token == "BECMG":
		return "BECMG"
	case token == "TEMPO":
		return "TEMPO"
	case probMarkerRe.MatchString(token):
		return "PROB"
	default:
		return ""
	}
}

// classifyTokens evaluates every rule against each token of one segment.
// Categories are non-exclusive; the first matching token per category
// is recorded for display.
func classifyTokens(tokens []string) map[Category]string {
	matched := make(map[Category]string)

	record := func(cat Category, token string) {
		if _, ok := matched[cat]; !ok {
			matched[cat] = token
		}
	}

	for _, token := range tokens {
		if m := visibilityRe.FindStringSubmatch(token); m != nil {
			if meters, err := strconv.Atoi(m[1]); err == nil && meters < LowVisibilityMeters {
				record(CategoryLowVisibility, token)
			}
		}
		if m := cloudRe.FindStringSubmatch(token); m != nil {
			if hundreds, err := strconv.Atoi(m[2]); err == nil && hundreds*100 < LowCeilingFeet {
				record(CategoryLowCeiling, token)
			}
		}
		if verticalVisRe.MatchString(token) {
			record(CategoryUnmeasuredVisibility, token)
		}
		if freezingRe.MatchString(token) {
			record(CategoryFreezing, token)
		}
		if snowRe.MatchString(token) {
			record(CategorySnow, token)
		}
	}

	if len(matched) == 0 {
		return nil
	}
	return matched
}
