// ABOUTME: Turns files on disk into Documents, dispatching on file extension
// ABOUTME: Unknown formats are read as best-effort text rather than rejected
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phuslu/log"

	"github.com/harper/bookrag/internal/models"
)

// SupportedExtensions are the formats with a dedicated decoder
var SupportedExtensions = []string{".txt", ".md", ".html", ".htm", ".xhtml", ".epub", ".pdf"}

// Loader reads documents from disk
type Loader struct {
	logger  *log.Logger
	tempDir string
}

// New creates a Loader. Scratch files for PDF extraction go under os.TempDir().
func New(logger *log.Logger) *Loader {
	return &Loader{logger: logger, tempDir: os.TempDir()}
}

// Load decodes the file at path into a Document tagged with docID
func (l *Loader) Load(ctx context.Context, path, docID string) (models.Document, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Document{}, fmt.Errorf("%w: %s", models.ErrDocumentNotFound, path)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", models.ErrUnreadableDocument, err)
	}
	if info.IsDir() {
		return models.Document{}, fmt.Errorf("%w: %s is a directory", models.ErrUnreadableDocument, path)
	}

	ext := strings.ToLower(filepath.Ext(path))

	var content string
	switch ext {
	case ".html", ".htm", ".xhtml":
		content, err = l.loadHTML(path)
	case ".epub":
		content, err = l.loadEPUB(path)
	case ".pdf":
		content, err = l.loadPDF(ctx, path)
	default:
		content, err = loadText(path)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: %s: %v", models.ErrUnreadableDocument, filepath.Base(path), err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return models.Document{}, fmt.Errorf("%w: %s", models.ErrEmptyDocument, filepath.Base(path))
	}

	l.logger.Debug().
		Str("doc_id", docID).
		Str("format", ext).
		Int("chars", utf8.RuneCountInString(content)).
		Msg("document loaded")

	return models.Document{
		Content: content,
		Metadata: models.DocumentMetadata{
			DocID:      docID,
			SourcePath: path,
		},
	}, nil
}

// DocIDFromPath derives a doc_id from a file name: the stem with underscores as spaces
func DocIDFromPath(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
}

// IsSupported reports whether path has a dedicated decoder
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return sanitize(string(data)), nil
}

// sanitize drops invalid UTF-8 and control characters other than whitespace
func sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
