package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/proflow/proflow-back/internal/auth"
	"github.com/proflow/proflow-back/internal/cache"
	"github.com/proflow/proflow-back/internal/domain"
	"github.com/proflow/proflow-back/internal/notify"
	"github.com/proflow/proflow-back/internal/repository"
	"github.com/proflow/proflow-back/internal/service"
	"github.com/proflow/proflow-back/internal/sheet"
)

func newTestAPI(t *testing.T) (*API, *repository.MemoryItemsRepository) {
	t.Helper()

	repo := repository.NewMemoryItemsRepository()
	notifier := notify.NewLocalNotifier()
	snapshot := cache.NewSnapshotCache()
	itemsService := service.NewItemsService(repo, notifier, snapshot, nil)

	fetcher := sheet.NewFetcher(sheet.FetcherConfig{Timeout: time.Second})
	importService := service.NewImportService(
		repo,
		repository.NewMemoryPrefsRepository(),
		notifier,
		fetcher,
		service.ImportConfig{FetchTimeout: time.Second},
		nil,
	)

	return NewAPI(itemsService, importService, auth.NewSessions(time.Hour), NewFeedHub(nil), nil), repo
}

func TestCreateItemEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	body := `{"title":"ORD-100","client":"Acme","task_name":"Sơn cửa gỗ","stage":"production","duration":3}`
	request := httptest.NewRequest(http.MethodPost, "/v1/items", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	api.Items(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}

	var created domain.WorkItem
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if created.Stage != domain.StageProduction {
		t.Fatalf("expected stage production, got %q", created.Stage)
	}
	if len(created.Tags) != 2 {
		t.Fatalf("expected tags derived from task text, got %+v", created.Tags)
	}
}

func TestCreateItemRejectsMissingTitle(t *testing.T) {
	api, _ := newTestAPI(t)

	request := httptest.NewRequest(http.MethodPost, "/v1/items", strings.NewReader(`{"client":"Acme"}`))
	recorder := httptest.NewRecorder()
	api.Items(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	var payload errorPayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Code != "invalid_request" {
		t.Fatalf("expected invalid_request code, got %q", payload.Error.Code)
	}
}

func TestCreateItemRejectsUnknownFields(t *testing.T) {
	api, _ := newTestAPI(t)

	request := httptest.NewRequest(http.MethodPost, "/v1/items", strings.NewReader(`{"title":"x","bogus":true}`))
	recorder := httptest.NewRecorder()
	api.Items(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestListItemsEndpointFilters(t *testing.T) {
	api, repo := newTestAPI(t)
	ctx := context.Background()

	seed := []domain.WorkItem{
		{Title: "ORD-1", Client: "Acme", TaskName: "Cắt gỗ", Stage: domain.StageDesign, StartDate: "2024-01-01", Duration: 5},
		{Title: "ORD-2", Client: "Beta", TaskName: "Sơn khung", Stage: domain.StageProduction, StartDate: "2024-01-01", Duration: 5},
	}
	for i := range seed {
		if err := repo.CreateItem(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	request := httptest.NewRequest(http.MethodGet, "/v1/items?stage=production", nil)
	recorder := httptest.NewRecorder()
	api.Items(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var response struct {
		Items []domain.WorkItem `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Total != 1 || len(response.Items) != 1 || response.Items[0].Title != "ORD-2" {
		t.Fatalf("expected only the production item, got %+v", response)
	}
}

func TestUpdateItemEndpoint(t *testing.T) {
	api, repo := newTestAPI(t)
	ctx := context.Background()

	created := domain.WorkItem{Title: "ORD-1", TaskName: "Cắt gỗ", Stage: domain.StageDesign}
	if err := repo.CreateItem(ctx, &created); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"progress":80,"task_name":"Lắp kính mặt tiền"}`
	request := httptest.NewRequest(http.MethodPatch, "/v1/items/"+created.ID, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	api.ItemByID(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	var updated domain.WorkItem
	if err := json.Unmarshal(recorder.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Progress != 80 {
		t.Fatalf("expected progress 80, got %d", updated.Progress)
	}
	found := false
	for _, tag := range updated.Tags {
		if tag.Label == "Kính" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tags re-derived from new task text, got %+v", updated.Tags)
	}
}

func TestItemByIDNotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	request := httptest.NewRequest(http.MethodGet, "/v1/items/missing", nil)
	recorder := httptest.NewRecorder()
	api.ItemByID(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
	var payload errorPayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", payload.Error.Code)
	}
}

func TestBulkDeleteEndpoint(t *testing.T) {
	api, repo := newTestAPI(t)
	ctx := context.Background()

	first := domain.WorkItem{Title: "ORD-1"}
	if err := repo.CreateItem(ctx, &first); err != nil {
		t.Fatalf("seed: %v", err)
	}
	second := domain.WorkItem{Title: "ORD-2"}
	if err := repo.CreateItem(ctx, &second); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"ids":["` + first.ID + `","` + second.ID + `","not-there"]}`
	request := httptest.NewRequest(http.MethodPost, "/v1/items/bulk-delete", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	api.BulkDelete(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	var response struct {
		Deleted int `json:"deleted"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", response.Deleted)
	}
}

func TestStatsEndpoint(t *testing.T) {
	api, repo := newTestAPI(t)
	ctx := context.Background()

	today := time.Now().Format("2006-01-02")
	seed := []domain.WorkItem{
		{Title: "ORD-1", StartDate: today, Duration: 5, Progress: 100},
		{Title: "ORD-2", StartDate: today, Duration: 5, Progress: 10},
	}
	for i := range seed {
		if err := repo.CreateItem(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	request := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	recorder := httptest.NewRecorder()
	api.Stats(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var stats domain.StatData
	if err := json.Unmarshal(recorder.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Total != 2 || stats.Completed != 1 || stats.Active != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestAnonymousSignInEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	request := httptest.NewRequest(http.MethodPost, "/v1/auth/anonymous", nil)
	recorder := httptest.NewRecorder()
	api.AnonymousSignIn(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var response struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Token == "" {
		t.Fatal("expected a session token")
	}
	if !api.sessions.Valid(response.Token) {
		t.Fatal("minted token should be valid")
	}
}

func TestImportStatusEndpointStartsIdle(t *testing.T) {
	api, _ := newTestAPI(t)

	request := httptest.NewRequest(http.MethodGet, "/v1/import/status", nil)
	recorder := httptest.NewRecorder()
	api.ImportStatus(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var status service.ImportStatus
	if err := json.Unmarshal(recorder.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if status.State != service.ImportIdle {
		t.Fatalf("expected idle state, got %q", status.State)
	}
}

func TestImportEndpointRequiresURL(t *testing.T) {
	api, _ := newTestAPI(t)

	request := httptest.NewRequest(http.MethodPost, "/v1/import", strings.NewReader(`{"url":"  "}`))
	recorder := httptest.NewRecorder()
	api.Import(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}
