// Package resume turns uploaded resume files into plain text and pulls
// contact fields out of that text. Extraction failures are reported to the
// caller as "no text available", never as fatal errors.
package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Extractor converts raw resume bytes of a given format into plain text.
type Extractor interface {
	Extract(data []byte, format string) (string, error)
}

// TextExtractor handles txt passthrough and DOCX (zip of XML) extraction.
// PDF text extraction is not supported in-process; PDF uploads proceed with
// blank contact fields.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

func (e *TextExtractor) Extract(data []byte, format string) (string, error) {
	switch strings.ToLower(format) {
	case "txt":
		return string(data), nil
	case "docx":
		return extractDocx(data)
	default:
		return "", fmt.Errorf("unsupported resume format %q", format)
	}
}

// extractDocx reads word/document.xml from the DOCX archive and collects the
// character data of its text nodes, one paragraph per line.
func extractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var doc *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx archive has no document body")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var b strings.Builder
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode docx body: %w", err)
		}
		switch t := token.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

// Contact holds the fields parsed out of resume text. Any of them may be
// blank when the text gives no match.
type Contact struct {
	Name  string
	Email string
	Phone string
}

var (
	titlePrefixRe = regexp.MustCompile(`(?i)^(Mr\.?|Ms\.?|Mrs\.?|Dr\.?)\s+`)
	emailRe       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRes      = []*regexp.Regexp{
		regexp.MustCompile(`\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`),
		regexp.MustCompile(`\+?[0-9]{1,4}[-.\s]?[0-9]{3,4}[-.\s]?[0-9]{3,4}[-.\s]?[0-9]{3,4}`),
		regexp.MustCompile(`\b[0-9]{10}\b`),
	}
)

// ExtractContact pulls name, email, and phone out of plain resume text.
func ExtractContact(text string) Contact {
	return Contact{
		Name:  extractName(text),
		Email: emailRe.FindString(text),
		Phone: extractPhone(text),
	}
}

// extractName scans the first five lines for a plausible full name: at least
// two words, under 50 characters, not a contact-info line.
func extractName(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "email") || strings.Contains(lower, "phone") ||
			strings.Contains(lower, "address") || strings.Contains(line, "@") {
			continue
		}
		line = titlePrefixRe.ReplaceAllString(line, "")
		if len(strings.Fields(line)) >= 2 && len(line) < 50 {
			return line
		}
	}
	return ""
}

func extractPhone(text string) string {
	for _, re := range phoneRes {
		if match := re.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}
