// Package document extracts plain text from source documents.
//
// A Processor reads local files in the supported formats (.txt, .md,
// .pdf, .docx, .html) and returns their textual content together with
// file metadata. A Fetcher (fetch.go) does the same for web pages.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/aiagentrag/ragserver/internal/log"
)

// ErrUnsupportedFormat indicates a file extension the processor cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Document holds the extracted content and metadata of a processed file.
type Document struct {
	Path    string // Absolute path of the source file
	Name    string // Base file name
	Ext     string // Lowercase extension including the dot
	Content string // Extracted plain text
	Size    int64  // File size in bytes
	ModTime time.Time
}

// supportedExtensions are the file types the processor can extract text from.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
	".html": true,
}

// Processor extracts text content from local files.
type Processor struct {
	logger log.Logger
}

// NewProcessor creates a Processor. A nil logger falls back to slog.Default().
func NewProcessor(logger log.Logger) *Processor {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Processor{logger: logger}
}

// Supported reports whether the extension (with or without leading dot)
// can be processed.
func (p *Processor) Supported(ext string) bool {
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return supportedExtensions[strings.ToLower(ext)]
}

// ProcessFile extracts the content of a single file.
// Returns ErrUnsupportedFormat for unknown extensions; missing files
// surface the underlying fs error.
func (p *Processor) ProcessFile(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", absPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, use ProcessDirectory", absPath)
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	p.logger.Debug("processing file", "path", absPath, "ext", ext)

	var content string
	switch ext {
	case ".txt", ".md":
		content, err = p.processTextFile(absPath)
	case ".pdf":
		content, err = p.processPDFFile(absPath)
	case ".docx":
		content, err = p.processDocxFile(absPath)
	case ".html":
		content, err = p.processHTMLFile(absPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", absPath, err)
	}

	return &Document{
		Path:    absPath,
		Name:    filepath.Base(absPath),
		Ext:     ext,
		Content: content,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ProcessDirectory walks dir recursively and processes every supported
// file. Per-file failures are logged and skipped so one bad document
// does not abort the whole ingestion.
func (p *Processor) ProcessDirectory(dir string) ([]*Document, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", absDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absDir)
	}

	var docs []*Document
	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			p.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		doc, err := p.ProcessFile(path)
		if err != nil {
			p.logger.Warn("failed to process file", "path", path, "error", err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absDir, err)
	}

	p.logger.Info("processed directory", "dir", absDir, "documents", len(docs))
	return docs, nil
}

func (p *Processor) processTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// processPDFFile extracts text page by page. Pages that fail to decode
// are logged and skipped; the original document may still be useful.
func (p *Processor) processPDFFile(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Warn("failed to extract pdf page", "path", path, "page", pageNum, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// processHTMLFile strips script/style elements and returns the visible
// text with whitespace collapsed.
func (p *Processor) processHTMLFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	return normalizeWhitespace(doc.Text()), nil
}

// normalizeWhitespace collapses runs of whitespace into single spaces,
// preserving nothing of the original layout. Matches the cleanup the
// retrieval layer expects for word-based chunking.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
