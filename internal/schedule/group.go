package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/proflow/proflow-back/internal/domain"
)

// GroupByOrder rolls filtered items up by title: earliest start, latest end,
// rounded mean progress, members sorted by start date. Output order follows
// the first appearance of each title in the input.
func GroupByOrder(items []domain.WorkItem) []domain.GroupedOrder {
	index := make(map[string]int, len(items))
	groups := make([]domain.GroupedOrder, 0)

	for _, item := range items {
		at, seen := index[item.Title]
		if !seen {
			index[item.Title] = len(groups)
			groups = append(groups, domain.GroupedOrder{
				ID:       item.Title,
				Title:    item.Title,
				Client:   item.Client,
				Items:    []domain.WorkItem{},
				MinStart: item.StartDate,
				MaxEnd:   EndDate(item),
			})
			at = len(groups) - 1
		}

		group := &groups[at]
		group.Items = append(group.Items, item)
		if dateBefore(item.StartDate, group.MinStart) {
			group.MinStart = item.StartDate
		}
		if end := EndDate(item); dateBefore(group.MaxEnd, end) {
			group.MaxEnd = end
		}
	}

	for i := range groups {
		group := &groups[i]
		sum := 0
		for _, item := range group.Items {
			sum += item.Progress
		}
		group.TotalProgress = int(math.Round(float64(sum) / float64(len(group.Items))))
		sort.SliceStable(group.Items, func(a, b int) bool {
			return dateBefore(group.Items[a].StartDate, group.Items[b].StartDate)
		})
	}

	return groups
}

// ComputeStats counts items per derived status. Overdue and active buckets
// are disjoint; completed counts purely by progress.
func ComputeStats(items []domain.WorkItem, today time.Time) domain.StatData {
	stats := domain.StatData{Total: len(items)}
	for _, item := range items {
		switch ClassifyStatus(item, today) {
		case domain.StatusOverdue:
			stats.Overdue++
		case domain.StatusActive:
			stats.Active++
		}
		if item.Progress >= 100 {
			stats.Completed++
		}
	}
	return stats
}

func dateBefore(a, b string) bool {
	first, okA := parseDate(a)
	second, okB := parseDate(b)
	if !okA || !okB {
		return a < b
	}
	return first.Before(second)
}
