// Package resume fetches the text of an applicant's resume from its URL so it
// can be screened when no resume text was submitted.
package resume

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	httpTimeout  = 15 * time.Second
	maxBodyBytes = 1 << 20
	userAgent    = "Mozilla/5.0 (compatible; JobMateHiring/1.0)"
)

// Fetcher downloads resume pages and reduces them to plain text.
type Fetcher struct {
	client *http.Client
}

// NewFetcher constructs a fetcher with a shared HTTP client. A nil client
// gets a default one with a 15s timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	return &Fetcher{client: client}
}

// Fetchable reports whether raw is an absolute http(s) URL.
func Fetchable(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Text returns the readable text behind rawURL. HTML pages are stripped of
// scripts and styles; plain text is returned as-is.
func (f *Fetcher) Text(ctx context.Context, rawURL string) (string, error) {
	if !Fetchable(rawURL) {
		return "", fmt.Errorf("resume url %q is not an http(s) url", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, text/plain;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resume host returned %d", resp.StatusCode)
	}
	body := io.LimitReader(resp.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		b, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		return collapse(string(b)), nil
	}
	return htmlText(body)
}

func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	return collapse(doc.Find("body").Text()), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
