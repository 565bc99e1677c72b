package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is the text pulled from one source before chunking.
type Document struct {
	Source string
	Text   string
}

// Loader resolves a list of sources (URLs or local file paths) into plain
// text documents. A failing source becomes a warning, not a fatal error, so
// one bad PDF does not sink the whole request.
type Loader struct {
	fetcher *URLFetcher
}

func NewLoader() *Loader {
	return &Loader{fetcher: NewURLFetcher()}
}

// Load extracts every source it can. The returned warnings describe the
// sources that were skipped.
func (l *Loader) Load(ctx context.Context, sources []string) ([]Document, []string) {
	docs := make([]Document, 0, len(sources))
	var warnings []string

	for _, source := range sources {
		text, err := l.loadOne(ctx, source)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", source, err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			warnings = append(warnings, fmt.Sprintf("%s: no extractable text", source))
			continue
		}
		docs = append(docs, Document{Source: source, Text: text})
	}
	return docs, warnings
}

func (l *Loader) loadOne(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetcher.Fetch(ctx, source)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".pdf":
		return ExtractPDF(source)
	case ".docx":
		return ExtractDOCX(source)
	case ".txt", ".md":
		data, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported source type")
	}
}
