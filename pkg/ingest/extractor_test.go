package ingest

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDOCX(t *testing.T, dir, name, documentXML string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func TestExtractDOCX(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve">world</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Fish &amp; chips</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	path := writeDOCX(t, t.TempDir(), "sample.docx", xml)
	text, err := ExtractDOCX(path)
	require.NoError(t, err)

	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "world")
	assert.Contains(t, text, "Fish & chips")
}

func TestExtractDOCX_MissingDocumentPart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	require.NoError(t, zw.Close())
	f.Close()

	_, err = ExtractDOCX(path)
	assert.Error(t, err)
}

func TestLoader_TextAndMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("plain notes"), 0o644))
	mdPath := filepath.Join(dir, "readme.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("# Title\nbody"), 0o644))

	loader := NewLoader()
	docs, warnings := loader.Load(context.Background(), []string{txtPath, mdPath})

	require.Len(t, docs, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, txtPath, docs[0].Source)
	assert.Equal(t, "plain notes", docs[0].Text)
}

func TestLoader_BadSourcesBecomeWarnings(t *testing.T) {
	dir := t.TempDir()
	emptyPath := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(emptyPath, []byte("   \n"), 0o644))

	loader := NewLoader()
	docs, warnings := loader.Load(context.Background(), []string{
		filepath.Join(dir, "missing.txt"),
		filepath.Join(dir, "data.xlsx"),
		emptyPath,
	})

	assert.Empty(t, docs)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[1], "unsupported source type")
	assert.Contains(t, warnings[2], "no extractable text")
}

func TestUnescapeXML(t *testing.T) {
	assert.Equal(t, `a < b & "c"`, unescapeXML("a &lt; b &amp; &quot;c&quot;"))
}
