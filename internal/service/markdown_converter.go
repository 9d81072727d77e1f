package service

import (
	"bytes"
	"context"
	"fmt"
	"os"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownConverter renders Markdown (GFM) to an HTML fragment. Code
// blocks are highlighted with inline styles so the fragment stays
// self-contained in the editor and in exported PDFs.
type MarkdownConverter struct {
	md goldmark.Markdown
}

func NewMarkdownConverter() *MarkdownConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &MarkdownConverter{md: md}
}

func (c *MarkdownConverter) Extensions() []string {
	return []string{".md", ".markdown"}
}

func (c *MarkdownConverter) ConvertFile(ctx context.Context, path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return c.Render(ctx, src)
}

// Render converts Markdown source. Goldmark has no context support, so
// cancellation is only observed before and after the conversion.
func (c *MarkdownConverter) Render(ctx context.Context, src []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
