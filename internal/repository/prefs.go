package repository

import (
	"context"
	"sync"
)

// PrefsRepository persists the single user preference the dashboard keeps:
// the last-used spreadsheet import URL. Read at startup, written on import,
// cleared on explicit unlink.
type PrefsRepository interface {
	ImportURL(ctx context.Context) (string, error)
	SetImportURL(ctx context.Context, url string) error
	ClearImportURL(ctx context.Context) error
}

// MemoryPrefsRepository holds the preference in process memory.
type MemoryPrefsRepository struct {
	mu  sync.RWMutex
	url string
}

func NewMemoryPrefsRepository() *MemoryPrefsRepository {
	return &MemoryPrefsRepository{}
}

func (r *MemoryPrefsRepository) ImportURL(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.url, nil
}

func (r *MemoryPrefsRepository) SetImportURL(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.url = url
	return nil
}

func (r *MemoryPrefsRepository) ClearImportURL(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.url = ""
	return nil
}
