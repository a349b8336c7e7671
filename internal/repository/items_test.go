package repository

import (
	"context"
	"testing"
	"time"

	"github.com/proflow/proflow-back/internal/domain"
)

func TestMemoryItemsRepositoryAssignsIDAndClones(t *testing.T) {
	repo := NewMemoryItemsRepository()
	ctx := context.Background()

	item := &domain.WorkItem{
		Title:     "A-101",
		Client:    "Khách A",
		TaskName:  "Sơn khung",
		Stage:     domain.StageDesign,
		Tags:      []domain.Tag{{Label: "Sơn", Color: "pink"}},
		StartDate: "2024-03-05",
		Duration:  5,
		Priority:  "Medium",
	}
	if err := repo.CreateItem(ctx, item); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if item.ID == "" {
		t.Fatalf("expected an assigned id")
	}
	if item.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}

	stored, err := repo.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	stored.Tags[0].Label = "mutated"

	again, _ := repo.GetItem(ctx, item.ID)
	if again.Tags[0].Label != "Sơn" {
		t.Fatalf("expected stored item isolated from returned copies")
	}
}

func TestMemoryItemsRepositoryPartialUpdate(t *testing.T) {
	repo := NewMemoryItemsRepository()
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	item := &domain.WorkItem{Title: "A", TaskName: "t", Stage: domain.StageDesign, Duration: 5, CreatedAt: created}
	if err := repo.CreateItem(ctx, item); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	progress := 80
	stage := domain.StageProduction
	updated, err := repo.UpdateItem(ctx, item.ID, ItemUpdate{Progress: &progress, Stage: &stage})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Progress != 80 || updated.Stage != domain.StageProduction {
		t.Fatalf("expected patched fields, got %+v", updated)
	}
	if updated.Title != "A" || updated.Duration != 5 {
		t.Fatalf("expected untouched fields preserved, got %+v", updated)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Fatalf("createdAt must never change on update")
	}
}

func TestMemoryItemsRepositoryUpdateMissing(t *testing.T) {
	repo := NewMemoryItemsRepository()
	if _, err := repo.UpdateItem(context.Background(), "nope", ItemUpdate{}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteItem(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryItemsRepositoryListNewestFirst(t *testing.T) {
	repo := NewMemoryItemsRepository()
	ctx := context.Background()

	older := &domain.WorkItem{Title: "old", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &domain.WorkItem{Title: "new", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	_ = repo.CreateItem(ctx, older)
	_ = repo.CreateItem(ctx, newer)

	items, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 || items[0].Title != "new" {
		t.Fatalf("expected newest-first ordering, got %+v", items)
	}
}

func TestMemoryPrefsRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryPrefsRepository()
	ctx := context.Background()

	if url, _ := repo.ImportURL(ctx); url != "" {
		t.Fatalf("expected empty initial url, got %q", url)
	}
	if err := repo.SetImportURL(ctx, "https://docs.google.com/spreadsheets/d/abc/edit"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if url, _ := repo.ImportURL(ctx); url == "" {
		t.Fatalf("expected stored url")
	}
	if err := repo.ClearImportURL(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if url, _ := repo.ImportURL(ctx); url != "" {
		t.Fatalf("expected cleared url, got %q", url)
	}
}
