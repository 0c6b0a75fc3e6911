package document

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// writeDocx builds a minimal docx archive with the given paragraphs.
func writeDocx(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating docx: %v", err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return path
}

func TestProcessFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello world\nsecond line")

	p := NewProcessor(nil)
	doc, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile() error: %v", err)
	}

	if doc.Content != "hello world\nsecond line" {
		t.Errorf("Content = %q", doc.Content)
	}
	if doc.Name != "notes.txt" || doc.Ext != ".txt" {
		t.Errorf("metadata = %q/%q, want notes.txt/.txt", doc.Name, doc.Ext)
	}
	if doc.Size == 0 {
		t.Error("Size = 0, want non-zero")
	}
	if !filepath.IsAbs(doc.Path) {
		t.Errorf("Path = %q, want absolute", doc.Path)
	}
}

func TestProcessFile_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "readme.md", "# Title\n\nbody text")

	p := NewProcessor(nil)
	doc, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile() error: %v", err)
	}
	if !strings.Contains(doc.Content, "# Title") {
		t.Errorf("markdown passed through verbatim, got %q", doc.Content)
	}
}

func TestProcessFile_HTML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html",
		`<html><head><style>body{color:red}</style><script>alert(1)</script></head>`+
			`<body><h1>Heading</h1><p>paragraph   text</p></body></html>`)

	p := NewProcessor(nil)
	doc, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile() error: %v", err)
	}

	if strings.Contains(doc.Content, "alert") || strings.Contains(doc.Content, "color:red") {
		t.Errorf("script/style not stripped: %q", doc.Content)
	}
	if !strings.Contains(doc.Content, "Heading") || !strings.Contains(doc.Content, "paragraph text") {
		t.Errorf("text not extracted or whitespace not collapsed: %q", doc.Content)
	}
}

func TestProcessFile_Docx(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "report.docx", "First paragraph.", "Second paragraph.")

	p := NewProcessor(nil)
	doc, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile() error: %v", err)
	}

	if !strings.Contains(doc.Content, "First paragraph.") ||
		!strings.Contains(doc.Content, "Second paragraph.") {
		t.Errorf("docx text not extracted: %q", doc.Content)
	}
	// Paragraphs separated by newlines.
	if !strings.Contains(doc.Content, "First paragraph.\n") {
		t.Errorf("expected newline after paragraph, got %q", doc.Content)
	}
}

func TestProcessFile_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "binary.exe", "MZ...")

	p := NewProcessor(nil)
	if _, err := p.ProcessFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestProcessFile_Missing(t *testing.T) {
	p := NewProcessor(nil)
	if _, err := p.ProcessFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "skip.bin", "binary")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "b.md", "beta")

	p := NewProcessor(nil)
	docs, err := p.ProcessDirectory(dir)
	if err != nil {
		t.Fatalf("ProcessDirectory() error: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}

	names := map[string]bool{}
	for _, d := range docs {
		names[d.Name] = true
	}
	if !names["a.txt"] || !names["b.md"] {
		t.Errorf("unexpected documents: %v", names)
	}
}

func TestProcessDirectory_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "alpha")

	p := NewProcessor(nil)
	if _, err := p.ProcessDirectory(path); err == nil {
		t.Error("expected error for non-directory path")
	}
}

func TestSupported(t *testing.T) {
	p := NewProcessor(nil)

	for _, ext := range []string{".txt", "txt", ".PDF", ".md", ".docx", ".html"} {
		if !p.Supported(ext) {
			t.Errorf("Supported(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{".exe", "", ".doc", ".csv"} {
		if p.Supported(ext) {
			t.Errorf("Supported(%q) = true, want false", ext)
		}
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	got := normalizeWhitespace("  a\n\n b\t\tc  ")
	if got != "a b c" {
		t.Errorf("normalizeWhitespace = %q, want %q", got, "a b c")
	}
}
