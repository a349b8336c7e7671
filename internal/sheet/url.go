package sheet

import "regexp"

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExportURL rewrites a spreadsheet share link into its CSV export link.
// URLs without a recognizable document id (including already-exported CSV
// links) pass through unchanged.
func ExportURL(raw string) string {
	if raw == "" {
		return ""
	}
	match := sheetIDPattern.FindStringSubmatch(raw)
	if match == nil {
		return raw
	}
	return "https://docs.google.com/spreadsheets/d/" + match[1] + "/export?format=csv"
}
