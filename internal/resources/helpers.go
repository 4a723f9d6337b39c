package resources

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const mimeText = "text/plain"

// textResource wraps text as a single plain-text resource body.
func textResource(uri, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeText,
			Text:     text,
		},
	}
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return textResource(uri, fmt.Sprintf("Error: %s", message))
}
