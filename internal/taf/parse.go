package taf

import "strings"

// SplitReports splits a multi-airport raw TAF response body into one
// text block per airport. Each report opens with a line starting with
// "TAF" (optionally "TAF AMD" or "TAF COR"); continuation lines belong
// to the most recently opened report.
func SplitReports(body string) map[string]string {
	reports := make(map[string]string)

	var currentAirport string
	var currentLines []string

	flush := func() {
		if currentAirport != "" && len(currentLines) > 0 {
			reports[currentAirport] = strings.Join(currentLines, "\n")
		}
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if code, ok := reportHeader(trimmed); ok {
			flush()
			currentAirport = code
			currentLines = []string{trimmed}
		} else if currentAirport != "" {
			currentLines = append(currentLines, trimmed)
		}
	}
	flush()

	return reports
}

// reportHeader returns the airport code if the line opens a new TAF
// report. Amended (AMD) and corrected (COR) reports carry the code one
// token later than plain ones.
func reportHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, "TAF") {
		return "", false
	}

	parts := strings.Fields(line)
	if strings.HasPrefix(line, "TAF AMD") || strings.HasPrefix(line, "TAF COR") {
		if len(parts) < 3 {
			return "", false
		}
		return parts[2], true
	}
	if len(parts) < 2 || parts[0] != "TAF" {
		return "", false
	}
	return parts[1], true
}
