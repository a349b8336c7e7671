package sheet

import "strings"

// ParseLine splits one CSV line on commas outside double quotes. Each quote
// character flips the in-quotes flag; escaped quotes ("") are not supported.
// Fields get at most one leading and one trailing quote stripped, then are
// trimmed. The downstream column heuristics were tuned against exactly this
// behavior, so it is kept as-is rather than swapped for encoding/csv.
func ParseLine(line string) []string {
	fields := make([]string, 0)
	start := 0
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '"':
			inQuotes = !inQuotes
		case line[i] == ',' && !inQuotes:
			fields = append(fields, cleanField(line[start:i]))
			start = i + 1
		}
	}
	fields = append(fields, cleanField(line[start:]))
	return fields
}

func cleanField(raw string) string {
	if len(raw) > 0 && raw[0] == '"' {
		raw = raw[1:]
	}
	if len(raw) > 0 && raw[len(raw)-1] == '"' {
		raw = raw[:len(raw)-1]
	}
	return strings.TrimSpace(raw)
}
