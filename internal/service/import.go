package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/proflow/proflow-back/internal/domain"
	"github.com/proflow/proflow-back/internal/notify"
	"github.com/proflow/proflow-back/internal/repository"
	"github.com/proflow/proflow-back/internal/sheet"
)

// ImportState is the pipeline phase visible to the status endpoint.
type ImportState string

const (
	ImportIdle        ImportState = "idle"
	ImportFetching    ImportState = "fetching"
	ImportParsing     ImportState = "parsing"
	ImportReconciling ImportState = "reconciling"
	ImportPersisting  ImportState = "persisting"
	ImportDone        ImportState = "done"
	ImportFailed      ImportState = "failed"
)

// ErrImportRunning rejects a trigger while a pipeline run is in flight.
var ErrImportRunning = errors.New("an import is already running")

// ImportStatus is the single human-readable report of the last run. Every
// pipeline error ends up in Message; nothing propagates past the service.
type ImportStatus struct {
	State      ImportState `json:"state"`
	Message    string      `json:"message"`
	Created    int         `json:"created"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`
}

type ImportConfig struct {
	FetchTimeout time.Duration
}

// ImportService runs the CSV import pipeline: rewrite share link, persist
// the URL preference, fetch through the relay, parse, reconcile against the
// pre-import snapshot, persist candidates concurrently, report a count.
type ImportService struct {
	repo     repository.ItemsRepository
	prefs    repository.PrefsRepository
	notifier notify.Notifier
	fetcher  *sheet.Fetcher
	timeout  time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	status  ImportStatus
}

func NewImportService(
	repo repository.ItemsRepository,
	prefs repository.PrefsRepository,
	notifier notify.Notifier,
	fetcher *sheet.Fetcher,
	cfg ImportConfig,
	logger *log.Logger,
) *ImportService {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ImportService{
		repo:     repo,
		prefs:    prefs,
		notifier: notifier,
		fetcher:  fetcher,
		timeout:  timeout,
		logger:   logger,
		status:   ImportStatus{State: ImportIdle},
	}
}

// Status returns the report of the current or last run.
func (s *ImportService) Status() ImportStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SavedURL returns the persisted import URL, if any.
func (s *ImportService) SavedURL(ctx context.Context) (string, error) {
	return s.prefs.ImportURL(ctx)
}

// ClearSavedURL unlinks the persisted import URL.
func (s *ImportService) ClearSavedURL(ctx context.Context) error {
	return s.prefs.ClearImportURL(ctx)
}

// Run executes one pipeline pass and returns its final status. A second
// trigger during a run gets ErrImportRunning; any other failure is folded
// into the returned status, not an error.
func (s *ImportService) Run(ctx context.Context, rawURL string) (ImportStatus, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ImportStatus{}, errors.New("import url is required")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ImportStatus{}, ErrImportRunning
	}
	s.running = true
	s.status = ImportStatus{State: ImportFetching}
	s.mu.Unlock()

	status := s.run(ctx, rawURL)

	s.mu.Lock()
	s.running = false
	status.FinishedAt = time.Now().UTC()
	s.status = status
	s.mu.Unlock()
	return status, nil
}

func (s *ImportService) run(ctx context.Context, rawURL string) ImportStatus {
	// Persist the raw input for reuse across sessions before the fetch, so
	// a failed run still leaves the URL linked.
	if err := s.prefs.SetImportURL(ctx, rawURL); err != nil && s.logger != nil {
		s.logger.Printf("persist import url failed: %v", err)
	}

	exportURL := sheet.ExportURL(rawURL)

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	body, err := s.fetcher.FetchCSV(fetchCtx, exportURL)
	if err != nil {
		return failed(fmt.Errorf("fetch failed: %w", err))
	}
	if sheet.LooksLikeHTML(body) {
		return failed(fmt.Errorf("%w: HTML content detected; make sure the sheet is shared as 'anyone with the link'", sheet.ErrFormat))
	}

	s.setState(ImportParsing)
	lines := nonBlankLines(body)
	if len(lines) < 2 {
		return failed(fmt.Errorf("%w: CSV is empty or has no data rows", sheet.ErrFormat))
	}

	headers := sheet.ParseLine(lines[0])
	columns := sheet.InferColumns(headers)

	s.setState(ImportReconciling)
	existing, err := s.repo.ListItems(ctx)
	if err != nil {
		return failed(fmt.Errorf("load existing items: %w", err))
	}

	// The dedup index sees only the pre-import snapshot. Duplicate rows
	// inside the same batch pass through, as the count contract expects.
	index := sheet.NewDedupIndex(existing)
	now := time.Now().UTC()

	candidates := make([]*domain.WorkItem, 0)
	for _, line := range lines[1:] {
		cols := sheet.ParseLine(line)
		if item := sheet.Normalize(cols, columns, index, now); item != nil {
			candidates = append(candidates, item)
		}
	}

	if len(candidates) == 0 {
		return ImportStatus{
			State:   ImportDone,
			Message: "no new data found or items already exist",
		}
	}

	s.setState(ImportPersisting)
	created, firstErr := s.persist(ctx, candidates)

	if created > 0 {
		if err := s.notifier.Publish(ctx); err != nil && s.logger != nil {
			s.logger.Printf("change publish failed after import: %v", err)
		}
	}

	if firstErr != nil {
		status := failed(fmt.Errorf("import failed after creating %d of %d items: %w", created, len(candidates), firstErr))
		status.Created = created
		return status
	}

	return ImportStatus{
		State:   ImportDone,
		Message: fmt.Sprintf("added %d new items", created),
		Created: created,
	}
}

// persist issues all creations concurrently. There is no ordering guarantee
// and no rollback: items created before a failure stay created.
func (s *ImportService) persist(ctx context.Context, candidates []*domain.WorkItem) (int, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		firstErr error
	)

	for _, candidate := range candidates {
		wg.Add(1)
		go func(item *domain.WorkItem) {
			defer wg.Done()
			err := s.repo.CreateItem(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			created++
		}(candidate)
	}
	wg.Wait()

	return created, firstErr
}

func (s *ImportService) setState(state ImportState) {
	s.mu.Lock()
	s.status.State = state
	s.mu.Unlock()
}

// failed folds a pipeline error into the status report. Nothing past this
// point sees the error itself.
func failed(err error) ImportStatus {
	return ImportStatus{State: ImportFailed, Message: err.Error()}
}

func nonBlankLines(body string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	return lines
}
