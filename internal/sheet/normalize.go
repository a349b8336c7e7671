package sheet

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/proflow/proflow-back/internal/domain"
	"github.com/proflow/proflow-back/internal/tags"
)

// Positional fallbacks used when the header heuristics found no column for a
// role. Spreadsheet exports from the ops team historically put these fields
// in fixed slots.
const (
	fallbackTitleColumn  = 0
	fallbackClientColumn = 1
	fallbackTaskColumn   = 3
)

// stageRules maps task-text keywords to a workflow stage. Evaluated top to
// bottom, first match wins; reordering is a behavior change.
var stageRules = []struct {
	keywords []string
	stage    domain.Stage
}{
	{[]string{"file", "lịch", "design", "thiết kế"}, domain.StageDesign},
	{[]string{"kỹ thuật", "eng"}, domain.StageEngineering},
	{[]string{"sản xuất", "xưởng"}, domain.StageProduction},
	{[]string{"giao", "lắp"}, domain.StageProduction},
	{[]string{"đá", "kính", "cnc"}, domain.StageCNC},
	{[]string{"bảo hành", "warranty"}, domain.StageWarranty},
}

var (
	leadingIntPattern = regexp.MustCompile(`^[+-]?\d+`)
	dayFirstPattern   = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
)

// DedupIndex answers whether a (title, raw task text) pair already exists.
// It is built once from the pre-import snapshot and deliberately not updated
// while a batch runs, so duplicate rows inside one import pass through.
type DedupIndex map[string]struct{}

func NewDedupIndex(items []domain.WorkItem) DedupIndex {
	index := make(DedupIndex, len(items))
	for _, item := range items {
		index[dedupKey(item.Title, item.TaskName)] = struct{}{}
	}
	return index
}

func (d DedupIndex) Has(title, taskName string) bool {
	_, ok := d[dedupKey(title, taskName)]
	return ok
}

func dedupKey(title, taskName string) string {
	return title + "\x1f" + taskName
}

// Normalize converts one parsed CSV row into a candidate work item. It
// returns nil for rows that are too short, have no resolvable title, or
// collide with an existing (title, task) pair.
func Normalize(cols []string, columns ColumnMap, existing DedupIndex, now time.Time) *domain.WorkItem {
	if len(cols) < 2 {
		return nil
	}

	title := pick(cols, columns.Title, fallbackTitleColumn)
	if title == "" {
		return nil
	}
	client := pick(cols, columns.Client, fallbackClientColumn)
	if client == "" {
		client = domain.DefaultClient
	}

	rawTask := pick(cols, columns.Stage, fallbackTaskColumn)

	// Dedup compares the raw task text, before the display default applies.
	if existing.Has(title, rawTask) {
		return nil
	}

	taskName := rawTask
	if taskName == "" {
		taskName = domain.DefaultTaskName
	}

	durationCell := "5"
	if columns.Duration > -1 {
		durationCell = cell(cols, columns.Duration)
	}
	priority := domain.DefaultPriority
	if columns.Priority > -1 {
		priority = cell(cols, columns.Priority)
	}
	if priority == "" {
		priority = domain.DefaultPriority
	}
	startCell := ""
	if columns.Start > -1 {
		startCell = cell(cols, columns.Start)
	}

	return &domain.WorkItem{
		Title:     title,
		Client:    client,
		TaskName:  taskName,
		Stage:     InferStage(rawTask),
		Tags:      tags.Detect(rawTask),
		StartDate: ResolveStartDate(startCell, now),
		Duration:  ParseDurationCell(durationCell),
		Priority:  priority,
		Progress:  0,
		CreatedAt: now,
	}
}

// InferStage maps free task text to a workflow stage, defaulting to design.
func InferStage(text string) domain.Stage {
	lower := strings.ToLower(text)
	for _, rule := range stageRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.stage
			}
		}
	}
	return domain.StageDesign
}

// ParseDurationCell reads the leading integer of a duration cell and takes
// its absolute value. Unparseable or zero cells fall back to the default.
func ParseDurationCell(value string) int {
	match := leadingIntPattern.FindString(strings.TrimSpace(value))
	if match == "" {
		return domain.DefaultDuration
	}
	parsed, err := strconv.Atoi(match)
	if err != nil {
		return domain.DefaultDuration
	}
	if parsed < 0 {
		parsed = -parsed
	}
	if parsed == 0 {
		return domain.DefaultDuration
	}
	return parsed
}

// ResolveStartDate normalizes a start cell to an ISO date. Day-first
// D/M/YYYY and D-M-YYYY forms convert directly; anything else goes through
// the generic layouts; failures and empty cells default to today.
func ResolveStartDate(value string, now time.Time) string {
	today := now.Format("2006-01-02")
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return today
	}

	if match := dayFirstPattern.FindStringSubmatch(trimmed); match != nil {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if candidate.Day() == day && int(candidate.Month()) == month {
			return candidate.Format("2006-01-02")
		}
		return today
	}

	layouts := []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "Jan 2, 2006", "January 2, 2006"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return today
}

func pick(cols []string, mapped, fallback int) string {
	if mapped > -1 {
		return cell(cols, mapped)
	}
	return cell(cols, fallback)
}

func cell(cols []string, index int) string {
	if index < 0 || index >= len(cols) {
		return ""
	}
	return cols[index]
}
