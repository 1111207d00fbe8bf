package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestLoader_Extract_Text(t *testing.T) {
	loader := NewLoader()

	segments, err := loader.Extract("notes.txt", []byte("plain content"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Extract() returned %d segments, want 1", len(segments))
	}
	if segments[0].Text != "plain content" {
		t.Errorf("Extract() text = %q", segments[0].Text)
	}
	if segments[0].Metadata["source"] != "notes.txt" {
		t.Errorf("Extract() metadata source = %v", segments[0].Metadata["source"])
	}
}

func TestLoader_Extract_Markdown(t *testing.T) {
	loader := NewLoader()
	content := []byte("# Title\n\nFirst paragraph with **bold** text.\n\nSecond paragraph\nacross two lines.\n\n```go\nfmt.Println(\"hi\")\n```\n")

	segments, err := loader.Extract("doc.md", content)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Extract() returned %d segments, want 1", len(segments))
	}

	text := segments[0].Text
	if strings.Contains(text, "#") || strings.Contains(text, "**") {
		t.Errorf("Extract() kept markdown syntax: %q", text)
	}
	for _, want := range []string{"Title", "First paragraph with", "bold", "Second paragraph", "fmt.Println"} {
		if !strings.Contains(text, want) {
			t.Errorf("Extract() text missing %q: %q", want, text)
		}
	}
	if !strings.Contains(text, "\n\n") {
		t.Errorf("Extract() should keep blank lines between blocks: %q", text)
	}
}

func TestLoader_Extract_EmptyMarkdown(t *testing.T) {
	loader := NewLoader()
	segments, err := loader.Extract("empty.md", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "" {
		t.Errorf("Extract() = %+v, want one empty segment", segments)
	}
}

func TestLoader_Extract_UnsupportedExtension(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Extract("paper.pdf", []byte("%PDF"))
	if !errors.Is(err, ErrFileTypeNotSupported) {
		t.Errorf("Extract() error = %v, want ErrFileTypeNotSupported", err)
	}
}
