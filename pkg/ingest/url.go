package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const maxFetchBytes = 5 * 1024 * 1024 // 5MB cap per page

// URLFetcher downloads a page and reduces it to markdown text suitable for
// chunking.
type URLFetcher struct {
	client    *http.Client
	converter *md.Converter
}

func NewURLFetcher() *URLFetcher {
	return &URLFetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		converter: md.NewConverter("", true, nil),
	}
}

func (f *URLFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "agentic-rag-be/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch url: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") {
		return string(body), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	// Strip the noise that never belongs in retrieval context.
	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()

	html, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(html) == "" {
		return doc.Text(), nil
	}

	markdown, err := f.converter.ConvertString(html)
	if err != nil {
		return doc.Text(), nil
	}
	return markdown, nil
}
