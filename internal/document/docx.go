package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// maxDocxPartSize caps the decompressed size of word/document.xml to
// guard against zip bombs.
const maxDocxPartSize = 64 * 1024 * 1024

// docx files are zip archives; the body text lives in word/document.xml
// as <w:p> paragraphs containing <w:t> text runs. Decoding the tokens
// directly avoids mapping the full WordprocessingML schema.
func (p *Processor) processDocxFile(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening docx archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("docx archive missing word/document.xml")
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("opening document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	return extractDocxText(io.LimitReader(rc, maxDocxPartSize))
}

// extractDocxText walks the XML token stream, collecting text runs and
// emitting a newline at each paragraph boundary.
func extractDocxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var sb strings.Builder
	var inText bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
