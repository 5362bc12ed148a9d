// ABOUTME: Tests for document loading by extension
// ABOUTME: Text, HTML, EPUB, binary fallback and error cases
package loader

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/bookrag/internal/logging"
	"github.com/harper/bookrag/internal/models"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func TestLoadText(t *testing.T) {
	p := writeFile(t, "moby_dick.txt", []byte("  Call me Ishmael.\nSome years ago.  \n"))
	doc, err := New(logging.Nop()).Load(context.Background(), p, "moby dick")
	require.NoError(t, err)
	assert.Equal(t, "Call me Ishmael.\nSome years ago.", doc.Content)
	assert.Equal(t, "moby dick", doc.Metadata.DocID)
	assert.Equal(t, p, doc.Metadata.SourcePath)
}

func TestLoadStripsInvalidBytes(t *testing.T) {
	p := writeFile(t, "blob.bin", []byte("hello\x00\xff\xfe world\x07"))
	doc, err := New(logging.Nop()).Load(context.Background(), p, "blob")
	require.NoError(t, err)
	assert.Equal(t, "hello world", doc.Content)
}

func TestLoadHTML(t *testing.T) {
	html := `<html><head><title>T</title><style>p{}</style></head>
<body><h1>Chapter One</h1><script>var x = 1;</script><p>It was a dark   night.</p><p>The end.</p></body></html>`
	p := writeFile(t, "book.html", []byte(html))

	doc, err := New(logging.Nop()).Load(context.Background(), p, "book")
	require.NoError(t, err)
	assert.Equal(t, "Chapter One\nIt was a dark night.\nThe end.", doc.Content)
	assert.NotContains(t, doc.Content, "var x")
}

func TestLoadEPUBFollowsSpine(t *testing.T) {
	p := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	entries := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?><container><rootfiles><rootfile full-path="OEBPS/content.opf"/></rootfiles></container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?><package><manifest>
<item id="a" href="text/a.xhtml" media-type="application/xhtml+xml"/>
<item id="b" href="text/b.xhtml" media-type="application/xhtml+xml"/>
</manifest><spine><itemref idref="b"/><itemref idref="a"/></spine></package>`,
		"OEBPS/text/a.xhtml": `<html><body><p>Second chapter.</p></body></html>`,
		"OEBPS/text/b.xhtml": `<html><body><p>First chapter.</p></body></html>`,
	}
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	doc, err := New(logging.Nop()).Load(context.Background(), p, "book")
	require.NoError(t, err)
	assert.Equal(t, "First chapter.\n\nSecond chapter.", doc.Content)
}

func TestLoadEPUBWithoutSpine(t *testing.T) {
	p := filepath.Join(t.TempDir(), "loose.epub")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"ch2.html": "<p>two</p>",
		"ch1.html": "<p>one</p>",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, _ = w.Write([]byte(body))
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	doc, err := New(logging.Nop()).Load(context.Background(), p, "loose")
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo", doc.Content)
}

func TestLoadErrors(t *testing.T) {
	l := New(logging.Nop())
	ctx := context.Background()

	_, err := l.Load(ctx, filepath.Join(t.TempDir(), "missing.txt"), "x")
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)

	_, err = l.Load(ctx, writeFile(t, "blank.txt", []byte(" \n\t ")), "x")
	assert.ErrorIs(t, err, models.ErrEmptyDocument)

	_, err = l.Load(ctx, writeFile(t, "broken.pdf", []byte("not a pdf at all")), "x")
	assert.ErrorIs(t, err, models.ErrUnreadableDocument)

	_, err = l.Load(ctx, writeFile(t, "broken.epub", []byte("not a zip")), "x")
	assert.ErrorIs(t, err, models.ErrUnreadableDocument)

	_, err = l.Load(ctx, t.TempDir(), "x")
	assert.ErrorIs(t, err, models.ErrUnreadableDocument)
}

func TestDocIDFromPath(t *testing.T) {
	tests := map[string]string{
		"/books/Moby_Dick.pdf":     "Moby Dick",
		"war_and_peace.epub":       "war and peace",
		"plain.txt":                "plain",
		"dir/The_Odyssey.v2.txt":   "The Odyssey.v2",
		"_leading_underscore_.txt": "leading underscore",
	}
	for in, want := range tests {
		assert.Equal(t, want, DocIDFromPath(in), in)
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.PDF"))
	assert.True(t, IsSupported("a.epub"))
	assert.True(t, IsSupported("a.txt"))
	assert.False(t, IsSupported("a.docx"))
	assert.False(t, IsSupported("noext"))
}
