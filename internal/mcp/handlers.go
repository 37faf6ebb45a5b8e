package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redlinehq/redline/internal/annotation"
)

// handleListAnnotations returns a document's annotation summary.
func (s *Server) handleListAnnotations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: document_id"), nil
	}

	entries, err := s.reviews.Summary(ctx, docID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing annotations failed: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No annotations on this document."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d annotations:\n\n", len(entries))
	for _, e := range entries {
		switch e.Kind {
		case annotation.KindHighlight:
			fmt.Fprintf(&b, "- [highlight/%s] %q (section %s)", e.Detail, e.PreviewText, e.SectionID)
		case annotation.KindComment:
			fmt.Fprintf(&b, "- [comment] %q on %q (section %s)", e.Detail, e.PreviewText, e.SectionID)
		}
		if e.Stale {
			b.WriteString(" [stale: section text changed]")
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetSection renders a section with annotations marked inline so an
// agent can read the text and the feedback in one pass.
func (s *Server) handleGetSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: document_id"), nil
	}
	sectionID, err := request.RequireString("section_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: section_id"), nil
	}

	segments, err := s.reviews.Render(ctx, docID, sectionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering section failed: %v", err)), nil
	}

	return mcp.NewToolResultText(FormatSegments(segments)), nil
}

// handleSearchComments performs semantic search over reviewer comments.
func (s *Server) handleSearchComments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.index == nil {
		return mcp.NewToolResultError("comment search is not configured (no embedding API key)"), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	results, err := s.index.Search(ctx, query, limit, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching comments found."), nil
	}

	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "- %q (document %s, section %s, score %.2f)\n", r.Text, r.DocumentID, r.SectionID, r.Similarity)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// FormatSegments flattens projected segments to annotated plain text:
// highlights become ==text== and comments text[^ comment].
func FormatSegments(segments []annotation.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch {
		case seg.Type == annotation.SegmentAnnotated && seg.Kind == annotation.KindHighlight:
			fmt.Fprintf(&b, "==%s==", seg.Content)
		case seg.Type == annotation.SegmentAnnotated && seg.Kind == annotation.KindComment:
			fmt.Fprintf(&b, "%s[^ %s]", seg.Content, seg.Comment)
		default:
			b.WriteString(seg.Content)
		}
	}
	return b.String()
}
