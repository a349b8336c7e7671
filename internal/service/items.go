package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/proflow/proflow-back/internal/cache"
	"github.com/proflow/proflow-back/internal/domain"
	"github.com/proflow/proflow-back/internal/notify"
	"github.com/proflow/proflow-back/internal/repository"
	"github.com/proflow/proflow-back/internal/schedule"
	"github.com/proflow/proflow-back/internal/tags"
)

// ItemsService owns work item CRUD and the derived read models (filtered
// listings, stats, grouped orders). Every successful mutation publishes a
// change signal; listings are served read-through from the snapshot cache.
type ItemsService struct {
	repo     repository.ItemsRepository
	notifier notify.Notifier
	snapshot *cache.SnapshotCache
	logger   *log.Logger
}

func NewItemsService(
	repo repository.ItemsRepository,
	notifier notify.Notifier,
	snapshot *cache.SnapshotCache,
	logger *log.Logger,
) *ItemsService {
	return &ItemsService{
		repo:     repo,
		notifier: notifier,
		snapshot: snapshot,
		logger:   logger,
	}
}

// Create persists a new item. Tags are always re-derived from the task text;
// client-supplied tags are ignored.
func (s *ItemsService) Create(ctx context.Context, item domain.WorkItem) (*domain.WorkItem, error) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if item.Stage == "" {
		item.Stage = domain.StageDesign
	}
	if !item.Stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q", item.Stage)
	}
	if item.Priority == "" {
		item.Priority = domain.DefaultPriority
	}
	if item.Duration < 0 {
		item.Duration = -item.Duration
	}
	if item.Duration == 0 {
		item.Duration = domain.DefaultDuration
	}
	if item.StartDate == "" {
		item.StartDate = time.Now().UTC().Format("2006-01-02")
	}

	item.ID = ""
	item.Tags = tags.Detect(item.TaskName)
	item.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.publishChange(ctx)
	return &item, nil
}

// Update applies a partial update. A changed task text re-derives the tags.
func (s *ItemsService) Update(ctx context.Context, id string, update repository.ItemUpdate) (*domain.WorkItem, error) {
	if update.Stage != nil && !update.Stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q", *update.Stage)
	}
	if update.TaskName != nil {
		derived := tags.Detect(*update.TaskName)
		update.Tags = &derived
	}

	item, err := s.repo.UpdateItem(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx)
	return item, nil
}

func (s *ItemsService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx)
	return nil
}

// BulkDelete removes the selected items, skipping ids that are already gone,
// and reports how many were deleted.
func (s *ItemsService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		err := s.repo.DeleteItem(ctx, id)
		if err == repository.ErrNotFound {
			continue
		}
		if err != nil {
			if deleted > 0 {
				s.publishChange(ctx)
			}
			return deleted, err
		}
		deleted++
	}
	if deleted > 0 {
		s.publishChange(ctx)
	}
	return deleted, nil
}

func (s *ItemsService) Get(ctx context.Context, id string) (*domain.WorkItem, error) {
	return s.repo.GetItem(ctx, id)
}

// List returns the filtered item set, newest first.
func (s *ItemsService) List(ctx context.Context, filter domain.ListFilter) ([]domain.WorkItem, error) {
	items, err := s.snapshotItems(ctx)
	if err != nil {
		return nil, err
	}
	return FilterItems(items, filter, time.Now().UTC()), nil
}

// Stats computes the dashboard counters over all items, unfiltered.
func (s *ItemsService) Stats(ctx context.Context) (domain.StatData, error) {
	items, err := s.snapshotItems(ctx)
	if err != nil {
		return domain.StatData{}, err
	}
	return schedule.ComputeStats(items, time.Now().UTC()), nil
}

// Orders returns the grouped-order rollup of the filtered set.
func (s *ItemsService) Orders(ctx context.Context, filter domain.ListFilter) ([]domain.GroupedOrder, error) {
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return schedule.GroupByOrder(items), nil
}

func (s *ItemsService) snapshotItems(ctx context.Context) ([]domain.WorkItem, error) {
	if items, ok := s.snapshot.Get(); ok {
		return items, nil
	}
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	s.snapshot.Set(items)
	return items, nil
}

// publishChange invalidates the snapshot and signals subscribers. The next
// read re-queries the store; nothing is patched into the cache locally.
func (s *ItemsService) publishChange(ctx context.Context) {
	s.snapshot.Invalidate()
	if err := s.notifier.Publish(ctx); err != nil && s.logger != nil {
		s.logger.Printf("change publish failed: %v", err)
	}
}

// FilterItems applies the dashboard filters: stage, free-text search over
// title/client/task, and the smart status filter (active includes overdue,
// matching the board's behavior).
func FilterItems(items []domain.WorkItem, filter domain.ListFilter, today time.Time) []domain.WorkItem {
	query := strings.ToLower(strings.TrimSpace(filter.Search))
	filtered := make([]domain.WorkItem, 0, len(items))

	for _, item := range items {
		if filter.Stage != "" && filter.Stage != "all" && string(item.Stage) != filter.Stage {
			continue
		}
		if query != "" && !matchesSearch(item, query) {
			continue
		}
		switch filter.Smart {
		case domain.SmartFilterOverdue:
			if schedule.ClassifyStatus(item, today) != domain.StatusOverdue {
				continue
			}
		case domain.SmartFilterActive:
			status := schedule.ClassifyStatus(item, today)
			if status != domain.StatusActive && status != domain.StatusOverdue {
				continue
			}
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func matchesSearch(item domain.WorkItem, query string) bool {
	return strings.Contains(strings.ToLower(item.Title), query) ||
		strings.Contains(strings.ToLower(item.Client), query) ||
		strings.Contains(strings.ToLower(item.TaskName), query)
}
