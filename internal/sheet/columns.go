package sheet

import "strings"

// ColumnMap holds the zero-based index of each semantic column inferred from
// a header row, or -1 when no header matched the role.
type ColumnMap struct {
	Title    int
	Client   int
	Stage    int
	Priority int
	Duration int
	Start    int
}

// Role keyword sets. A header cell claims a role when it contains any of the
// role's substrings, case-insensitively. First matching cell wins per role;
// one cell may satisfy several roles.
var (
	titleKeywords    = []string{"id", "mã", "tên", "loại hàng", "project"}
	clientKeywords   = []string{"workstream", "khách", "client"}
	stageKeywords    = []string{"công việc", "task", "description", "mô tả", "status", "giai đoạn"}
	priorityKeywords = []string{"ưu tiên", "priority"}
	durationKeywords = []string{"số ngày", "duration", "days"}
	startKeywords    = []string{"started", "bắt đầu", "date"}
)

// InferColumns inspects a parsed header row and maps semantic roles to
// column indices.
func InferColumns(headers []string) ColumnMap {
	lowered := make([]string, len(headers))
	for i, header := range headers {
		lowered[i] = strings.ToLower(header)
	}

	return ColumnMap{
		Title:    findColumn(lowered, titleKeywords),
		Client:   findColumn(lowered, clientKeywords),
		Stage:    findColumn(lowered, stageKeywords),
		Priority: findColumn(lowered, priorityKeywords),
		Duration: findColumn(lowered, durationKeywords),
		Start:    findColumn(lowered, startKeywords),
	}
}

func findColumn(lowered []string, keywords []string) int {
	for i, header := range lowered {
		for _, keyword := range keywords {
			if strings.Contains(header, keyword) {
				return i
			}
		}
	}
	return -1
}
