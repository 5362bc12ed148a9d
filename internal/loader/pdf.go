// ABOUTME: PDF decoding via pdfcpu content-stream extraction
// ABOUTME: Text is recovered from Tj/TJ show-text operators page by page
package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pageNumber = regexp.MustCompile(`page_(\d+)`)

func (l *Loader) loadPDF(ctx context.Context, p string) (string, error) {
	pdfCtx, err := api.ReadContextFile(p)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	outDir, err := os.MkdirTemp(l.tempDir, "bookrag-pdf-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	if err := api.ExtractContentFile(p, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("failed to extract pdf content: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", err
	}

	pages := make(map[int]string, pdfCtx.PageCount)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		m := pageNumber.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		raw, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			continue
		}
		pages[n] += contentStreamText(raw)
	}

	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var b strings.Builder
	for _, n := range nums {
		text := strings.TrimSpace(pages[n])
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	if b.Len() == 0 {
		l.logger.Warn().Str("path", p).Int("pages", pdfCtx.PageCount).Msg("pdf has no extractable text")
	}
	return sanitize(b.String()), nil
}

// contentStreamText walks a decoded page content stream and collects the
// operands of text-showing operators. Line-moving operators become newlines.
func contentStreamText(stream []byte) string {
	var (
		out     strings.Builder
		pending []string
		inArray bool
	)

	flush := func() {
		for _, s := range pending {
			out.WriteString(s)
		}
		pending = pending[:0]
	}
	newline := func() {
		s := out.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '(':
			s, next := readLiteral(stream, i)
			pending = append(pending, s)
			i = next
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
		case c == '<':
			s, next := readHex(stream, i)
			pending = append(pending, s)
			i = next
		case c == '[':
			inArray = true
			i++
		case c == ']':
			inArray = false
			i++
		case c == '-' && inArray:
			// large negative kerning inside TJ arrays is a word gap
			j := i + 1
			for j < len(stream) && (isDigit(stream[j]) || stream[j] == '.') {
				j++
			}
			if v, err := strconv.ParseFloat(string(stream[i:j]), 64); err == nil && v <= -200 {
				pending = append(pending, " ")
			}
			i = max(j, i+1)
		case isOperatorStart(c):
			j := i
			for j < len(stream) && isOperatorChar(stream[j]) {
				j++
			}
			switch string(stream[i:j]) {
			case "Tj", "TJ":
				flush()
			case "'", "\"":
				newline()
				flush()
			case "Td", "TD", "T*", "ET":
				pending = pending[:0]
				newline()
			}
			i = j
		default:
			i++
		}
	}
	return out.String()
}

func readLiteral(stream []byte, start int) (string, int) {
	var buf bytes.Buffer
	depth := 0
	i := start
	for ; i < len(stream); i++ {
		c := stream[i]
		switch c {
		case '\\':
			if i+1 >= len(stream) {
				continue
			}
			i++
			switch e := stream[i]; e {
			case 'n':
				buf.WriteByte('\n')
			case 'r', 't', 'b', 'f':
				buf.WriteByte(' ')
			case '(', ')', '\\':
				buf.WriteByte(e)
			default:
				if isOctal(e) {
					j := i
					for j < len(stream) && j < i+3 && isOctal(stream[j]) {
						j++
					}
					v, _ := strconv.ParseUint(string(stream[i:j]), 8, 8)
					buf.WriteByte(byte(v))
					i = j - 1
				}
			}
		case '(':
			if depth > 0 {
				buf.WriteByte(c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return buf.String(), i + 1
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
		}
	}
	return buf.String(), i
}

func readHex(stream []byte, start int) (string, int) {
	end := bytes.IndexByte(stream[start:], '>')
	if end < 0 {
		return "", len(stream)
	}
	hex := strings.Map(func(r rune) rune {
		if strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return r
		}
		return -1
	}, string(stream[start+1:start+end]))
	if len(hex)%2 == 1 {
		hex += "0"
	}

	var buf bytes.Buffer
	for k := 0; k+1 < len(hex); k += 2 {
		v, _ := strconv.ParseUint(hex[k:k+2], 16, 8)
		if v >= 32 && v < 127 {
			buf.WriteByte(byte(v))
		}
	}
	return buf.String(), start + end + 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

func isOperatorStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '\'' || c == '"' || c == '*'
}

func isOperatorChar(c byte) bool {
	return isOperatorStart(c) || isDigit(c)
}
