// ABOUTME: Tests for PDF content-stream text extraction
// ABOUTME: Text operators, escapes and kerning
package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentStreamText(t *testing.T) {
	stream := []byte(`BT /F1 12 Tf 72 712 Td (Call me Ishmael.) Tj 0 -14 Td [(Some) -300 (years ago)] TJ ET`)
	assert.Equal(t, "Call me Ishmael.\nSome years ago\n", contentStreamText(stream))
}

func TestContentStreamTextEscapesAndHex(t *testing.T) {
	stream := []byte(`BT (a \(nested\) \101) Tj T* <48656c6c6f> Tj ET`)
	assert.Equal(t, "a (nested) A\nHello\n", contentStreamText(stream))
}

func TestContentStreamTextIgnoresDictionaries(t *testing.T) {
	stream := []byte(`/Span <</MCID 0>> BDC BT (x) Tj ET EMC`)
	assert.Equal(t, "x\n", contentStreamText(stream))
}

func TestContentStreamTextSmallKerningIsNotASpace(t *testing.T) {
	stream := []byte(`BT [(W) -20 (hale)] TJ ET`)
	assert.Equal(t, "Whale\n", contentStreamText(stream))
}
