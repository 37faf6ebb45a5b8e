package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listAnnotationsTool defines the list_annotations MCP tool.
var listAnnotationsTool = mcp.NewTool("list_annotations",
	mcp.WithDescription("List all reviewer annotations on a document: highlights and comments, with the text they cover."),
	mcp.WithString("document_id",
		mcp.Required(),
		mcp.Description("ID of the document"),
	),
)

// getSectionTool defines the get_section MCP tool.
var getSectionTool = mcp.NewTool("get_section",
	mcp.WithDescription("Get a document section's text with reviewer annotations marked inline."),
	mcp.WithString("document_id",
		mcp.Required(),
		mcp.Description("ID of the document"),
	),
	mcp.WithString("section_id",
		mcp.Required(),
		mcp.Description("ID of the section within the document"),
	),
)

// searchCommentsTool defines the search_comments MCP tool.
var searchCommentsTool = mcp.NewTool("search_comments",
	mcp.WithDescription("Search reviewer comments semantically across all documents."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)
