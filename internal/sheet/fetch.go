package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Import error taxonomy. NetworkError covers transport and non-success
// responses; FormatError covers bodies that are not usable CSV.
var (
	ErrNetwork = errors.New("network error")
	ErrFormat  = errors.New("format error")
)

// DefaultProxyBase is the public CORS relay used when no proxy is
// configured.
const DefaultProxyBase = "https://api.allorigins.win/raw?url="

type FetcherConfig struct {
	ProxyBase string
	Timeout   time.Duration
}

// Fetcher retrieves CSV exports, optionally through a CORS relay. An empty
// ProxyBase fetches the export link directly.
type Fetcher struct {
	client    *http.Client
	proxyBase string
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		proxyBase: cfg.ProxyBase,
	}
}

// FetchCSV downloads the body at target, optionally through the relay. The
// caller's context bounds the whole request.
func (f *Fetcher) FetchCSV(ctx context.Context, target string) (string, error) {
	requestURL := target
	if f.proxyBase != "" {
		requestURL = f.proxyBase + url.QueryEscape(target)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}

	response, err := f.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", fmt.Errorf("%w: response status %d", ErrNetwork, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	return string(body), nil
}

// LooksLikeHTML reports whether a fetched body is an HTML page rather than
// CSV, which means the sheet is not link-shared.
func LooksLikeHTML(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}
