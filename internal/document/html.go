package document

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/redlinehq/redline/internal/annotation"
)

// SegmentsHTML renders a projected segment sequence as an HTML fragment.
// Highlights become <mark> elements with a color class, comments become
// <span> elements carrying the comment text in a title attribute. Plain
// runs are escaped verbatim, so the fragment's visible text equals the
// section text.
func SegmentsHTML(segments []annotation.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		content := html.EscapeString(seg.Content)
		switch {
		case seg.Type == annotation.SegmentAnnotated && seg.Kind == annotation.KindHighlight:
			fmt.Fprintf(&b, `<mark class="hl-%s" data-annotation-id="%s">%s</mark>`,
				html.EscapeString(seg.Color), html.EscapeString(seg.AnnotationID), content)
		case seg.Type == annotation.SegmentAnnotated && seg.Kind == annotation.KindComment:
			fmt.Fprintf(&b, `<span class="comment" data-annotation-id="%s" title="%s">%s</span>`,
				html.EscapeString(seg.AnnotationID), html.EscapeString(seg.Comment), content)
		default:
			b.WriteString(content)
		}
	}
	return b.String()
}

// MarkdownHTML renders full markdown source to HTML with GFM extensions
// and syntax-highlighted code blocks, for whole-document preview pages.
func MarkdownHTML(source []byte) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			htmlrenderer.WithUnsafe(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
