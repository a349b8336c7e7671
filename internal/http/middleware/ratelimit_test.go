package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitThrottlesAfterBurst(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	for i := 0; i < 3; i++ {
		request := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
		request.RemoteAddr = "10.0.0.1:5000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		lastCode = recorder.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected status %d after exhausting burst, got %d", http.StatusTooManyRequests, lastCode)
	}
}

func TestRateLimitExemptsHealthAndFeed(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/v1/feed"} {
		for i := 0; i < 5; i++ {
			request := httptest.NewRequest(http.MethodGet, path, nil)
			request.RemoteAddr = "10.0.0.2:5000"
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			if recorder.Code != http.StatusOK {
				t.Fatalf("expected %s to bypass the limiter, got status %d", path, recorder.Code)
			}
		}
	}
}

func TestRateLimitTracksClientsSeparately(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
	first.RemoteAddr = "10.0.0.3:5000"
	firstRecorder := httptest.NewRecorder()
	handler.ServeHTTP(firstRecorder, first)

	second := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
	second.RemoteAddr = "10.0.0.4:5000"
	secondRecorder := httptest.NewRecorder()
	handler.ServeHTTP(secondRecorder, second)

	if firstRecorder.Code != http.StatusOK || secondRecorder.Code != http.StatusOK {
		t.Fatalf("expected separate clients to each get their own burst, got %d and %d",
			firstRecorder.Code, secondRecorder.Code)
	}
}
