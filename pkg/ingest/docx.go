package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	wordTextRe      = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	wordParagraphRe = regexp.MustCompile(`</w:p>`)
)

// ExtractDOCX reads the main document part of an OOXML .docx archive and
// collects the <w:t> text nodes, inserting a newline per paragraph.
func ExtractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var docXML []byte
	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}

	content := wordParagraphRe.ReplaceAllString(string(docXML), "\n")
	matches := wordTextRe.FindAllStringSubmatch(content, -1)

	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(m[1])
		sb.WriteString(" ")
	}
	return unescapeXML(sb.String()), nil
}

func unescapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}
