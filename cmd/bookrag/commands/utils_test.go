// ABOUTME: Tests for shared utility functions used by CLI commands
// ABOUTME: Verifies truncation, validation and input directory scanning

package commands

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"very short maxLen", "hello", 2, "he"},
		{"maxLen equals 3", "hello", 3, "hel"},
		{"empty string", "", 10, ""},
		{"unicode string", "你好世界！", 3, "你好世"},
		{"unicode with ellipsis", "你好世界！你好", 5, "你好..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	got := oneLine("Call me\n\nIshmael.\tSome  years ago")
	want := "Call me Ishmael. Some years ago"
	if got != want {
		t.Errorf("oneLine() = %q, want %q", got, want)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{1, false},
		{100, false},
		{0, true},
		{-5, true},
	}

	for _, tt := range tests {
		err := validatePositiveInt(tt.n, "jobs")
		if (err != nil) != tt.wantErr {
			t.Errorf("validatePositiveInt(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}

func TestValidateNonNegativeInt(t *testing.T) {
	if err := validateNonNegativeInt(0, "k"); err != nil {
		t.Errorf("0 should be accepted: %v", err)
	}
	if err := validateNonNegativeInt(-1, "k"); err == nil {
		t.Error("-1 should be rejected")
	}
}

func TestScanInput(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Moby_Dick.txt", "Moby_Dick.pdf", "notes.md", "cover.jpg", "Walden.epub"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := scanInput(dir)
	if err != nil {
		t.Fatalf("scanInput() error = %v", err)
	}

	// Moby_Dick.pdf sorts before Moby_Dick.txt and claims the doc_id
	want := []inputFile{
		{path: filepath.Join(dir, "Moby_Dick.pdf"), docID: "Moby Dick"},
		{path: filepath.Join(dir, "Walden.epub"), docID: "Walden"},
		{path: filepath.Join(dir, "notes.md"), docID: "notes"},
	}
	if len(files) != len(want) {
		t.Fatalf("scanInput() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %v, want %v", i, files[i], want[i])
		}
	}
}

func TestScanInput_MissingDir(t *testing.T) {
	files, err := scanInput(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}
