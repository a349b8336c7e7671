package schedule

import (
	"time"

	"github.com/proflow/proflow-back/internal/domain"
)

const isoDate = "2006-01-02"

// parseDate accepts the ISO date-only form plus the loose formats that show
// up in spreadsheet exports.
func parseDate(value string) (time.Time, bool) {
	layouts := []string{isoDate, time.RFC3339, "2006-01-02 15:04:05", "01/02/2006"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// AddDays returns the ISO date n calendar days after the given date.
// Negative n walks backwards. Unparseable input is returned unchanged.
func AddDays(date string, n int) string {
	parsed, ok := parseDate(date)
	if !ok {
		return date
	}
	return parsed.AddDate(0, 0, n).Format(isoDate)
}

// EndDate computes an item's exclusive end date (start plus duration days).
func EndDate(item domain.WorkItem) string {
	return AddDays(item.StartDate, item.Duration)
}

// FormatDayMonth renders dd/MM for compact timeline labels. It returns the
// input unchanged when parsing fails so display never errors.
func FormatDayMonth(date string) string {
	parsed, ok := parseDate(date)
	if !ok {
		return date
	}
	return parsed.Format("02/01")
}

// ClassifyStatus derives the schedule status of an item for a given day.
// A completed item stays completed no matter what its dates say.
func ClassifyStatus(item domain.WorkItem, today time.Time) domain.ItemStatus {
	if item.Progress >= 100 {
		return domain.StatusCompleted
	}

	start, ok := parseDate(item.StartDate)
	if !ok {
		return domain.StatusUpcoming
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, item.Duration)

	if end.Before(day) {
		return domain.StatusOverdue
	}
	if !start.After(day) && !end.Before(day) {
		return domain.StatusActive
	}
	return domain.StatusUpcoming
}
