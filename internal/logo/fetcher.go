package logo

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout = 5 * time.Second
	maxLogoBytes   = 5 << 20
	defaultType    = "image/png"
)

// Fetcher downloads client logos and inlines them as data URIs for PDF embedding.
type Fetcher struct {
	Client  *http.Client
	Timeout time.Duration
	Logger  *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{Client: &http.Client{}, Timeout: timeout, Logger: logger}
}

// FetchDataURI returns data:<content-type>;base64,<body> for a successful fetch. Any
// failure yields ok=false; callers simply omit the logo.
func (f *Fetcher) FetchDataURI(ctx context.Context, url string) (string, bool) {
	if url == "" {
		return "", false
	}
	l := strings.ToLower(url)
	if !strings.HasPrefix(l, "http://") && !strings.HasPrefix(l, "https://") {
		return "", false
	}
	uri, err := f.fetch(ctx, url)
	if err != nil {
		f.Logger.Warn("logo fetch failed", "url", url, "error", err)
		return "", false
	}
	return uri, true
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxLogoBytes {
		return "", fmt.Errorf("logo exceeds %d bytes", maxLogoBytes)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
