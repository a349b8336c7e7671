package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proflow/proflow-back/internal/domain"
)

var ErrNotFound = errors.New("resource not found")

// ItemUpdate carries a partial update; nil fields keep their stored value.
// CreatedAt is set once at creation and never patched.
type ItemUpdate struct {
	Title     *string
	Client    *string
	TaskName  *string
	Stage     *domain.Stage
	Tags      *[]domain.Tag
	StartDate *string
	Duration  *int
	Priority  *string
	Progress  *int
}

// ItemsRepository abstracts work item persistence. Implementations assign
// the document ID on create when the item carries none.
type ItemsRepository interface {
	CreateItem(ctx context.Context, item *domain.WorkItem) error
	UpdateItem(ctx context.Context, id string, update ItemUpdate) (*domain.WorkItem, error)
	DeleteItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*domain.WorkItem, error)
	ListItems(ctx context.Context) ([]domain.WorkItem, error)
}

// MemoryItemsRepository stores items in memory for local development and
// tests.
type MemoryItemsRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.WorkItem
}

func NewMemoryItemsRepository() *MemoryItemsRepository {
	return &MemoryItemsRepository{
		items: make(map[string]*domain.WorkItem),
	}
}

func (r *MemoryItemsRepository) CreateItem(_ context.Context, item *domain.WorkItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *MemoryItemsRepository) UpdateItem(
	_ context.Context,
	id string,
	update ItemUpdate,
) (*domain.WorkItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	applyUpdate(item, update)
	return cloneItem(item), nil
}

func (r *MemoryItemsRepository) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryItemsRepository) GetItem(_ context.Context, id string) (*domain.WorkItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneItem(item), nil
}

func (r *MemoryItemsRepository) ListItems(_ context.Context) ([]domain.WorkItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.WorkItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, *cloneItem(item))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func applyUpdate(item *domain.WorkItem, update ItemUpdate) {
	if update.Title != nil {
		item.Title = *update.Title
	}
	if update.Client != nil {
		item.Client = *update.Client
	}
	if update.TaskName != nil {
		item.TaskName = *update.TaskName
	}
	if update.Stage != nil {
		item.Stage = *update.Stage
	}
	if update.Tags != nil {
		item.Tags = append([]domain.Tag(nil), (*update.Tags)...)
	}
	if update.StartDate != nil {
		item.StartDate = *update.StartDate
	}
	if update.Duration != nil {
		item.Duration = *update.Duration
	}
	if update.Priority != nil {
		item.Priority = *update.Priority
	}
	if update.Progress != nil {
		item.Progress = *update.Progress
	}
}

func cloneItem(item *domain.WorkItem) *domain.WorkItem {
	if item == nil {
		return nil
	}
	clone := *item
	clone.Tags = append([]domain.Tag(nil), item.Tags...)
	return &clone
}
