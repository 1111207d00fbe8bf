package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"docrag/internal/chunker"
)

// Loader extracts plain-text segments from stored files based on their
// extension.
type Loader struct {
	parser goldmark.Markdown
}

// NewLoader creates a Loader with a markdown parser configured for tables.
func NewLoader() *Loader {
	return &Loader{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Extract converts file content into chunker segments. Text files become a
// single segment; markdown files are parsed and flattened to plain text.
// Each segment's metadata records the source file.
func (l *Loader) Extract(assetName string, content []byte) ([]chunker.Segment, error) {
	meta := map[string]any{"source": assetName}

	switch strings.ToLower(filepath.Ext(assetName)) {
	case ".txt":
		return []chunker.Segment{{Text: string(content), Metadata: meta}}, nil
	case ".md":
		return []chunker.Segment{{Text: l.markdownToText(content), Metadata: meta}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrFileTypeNotSupported, filepath.Ext(assetName))
	}
}

// markdownToText parses markdown and flattens its block structure to plain
// text, keeping blank lines between blocks so the chunker can split on
// paragraph boundaries.
func (l *Loader) markdownToText(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	reader := text.NewReader(content)
	doc := l.parser.Parser().Parse(reader)

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph:
			if block := extractNodeText(n, content); block != "" {
				blocks = append(blocks, block)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			var sb strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(content))
			}
			if block := strings.TrimSpace(sb.String()); block != "" {
				blocks = append(blocks, block)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(blocks, "\n\n")
}

// extractNodeText collects the text content of a node and its children.
func extractNodeText(n ast.Node, content []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if textNode, ok := child.(*ast.Text); ok {
			sb.Write(textNode.Segment.Value(content))
			if textNode.SoftLineBreak() || textNode.HardLineBreak() {
				sb.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

