// ABOUTME: HTML and EPUB decoding via goquery
// ABOUTME: EPUB chapters are read in spine order from the OPF package document
package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func (l *Loader) loadHTML(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return htmlText(f)
}

// htmlText returns the visible text of an HTML document, one block per line
func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find("script, style, head").Remove()
	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return collapseBlankLines(root.Text()), nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

func (l *Loader) loadEPUB(p string) (string, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return "", fmt.Errorf("failed to open epub: %w", err)
	}
	defer func() { _ = zr.Close() }()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	order := spineOrder(files)
	if len(order) == 0 {
		l.logger.Debug().Str("path", p).Msg("epub has no readable spine, using archive order")
		for name := range files {
			if isXHTML(name) {
				order = append(order, name)
			}
		}
		sort.Strings(order)
	}

	var parts []string
	for _, name := range order {
		f, ok := files[name]
		if !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		text, err := htmlText(rc)
		_ = rc.Close()
		if err != nil {
			l.logger.Warn().Err(err).Str("entry", name).Msg("skipping unreadable epub chapter")
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// spineOrder resolves container.xml -> OPF -> spine hrefs as archive paths
func spineOrder(files map[string]*zip.File) []string {
	var container epubContainer
	if err := decodeXML(files["META-INF/container.xml"], &container); err != nil || len(container.Rootfiles) == 0 {
		return nil
	}
	opfPath := container.Rootfiles[0].FullPath

	var pkg epubPackage
	if err := decodeXML(files[opfPath], &pkg); err != nil {
		return nil
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}

	base := path.Dir(opfPath)
	var order []string
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		order = append(order, path.Clean(path.Join(base, href)))
	}
	return order
}

func decodeXML(f *zip.File, v any) error {
	if f == nil {
		return os.ErrNotExist
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return xml.NewDecoder(rc).Decode(v)
}

func isXHTML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xhtml") || strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}
