package render

import (
	"fmt"
	"html"
	"strings"
)

// DefaultCSS carries the dashboard's highlight styling.
const DefaultCSS = `.highlight { background:#fff59d; padding:2px 3px; border-radius:3px; cursor:help; }
.highlight:hover { background:#ffeb3b; }
.highlight-selected { background:#80deea; padding:2px 3px; border-radius:3px; cursor:help; }
.highlight-selected:hover { background:#4dd0e1; }
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; line-height: 1.5; }
.doc-body { white-space: pre-wrap; }
.caption { color: #666; font-size: 0.9rem; }`

// Page wraps highlighted body markup in a standalone HTML document with
// title, optional source link and caption line.
func Page(title, url, caption, highlighted string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n</head>\n<body>\n", DefaultCSS)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	if url != "" {
		fmt.Fprintf(&b, "<p><a href=\"%s\">Open Source Link</a></p>\n", html.EscapeString(url))
	}
	if caption != "" {
		fmt.Fprintf(&b, "<p class=\"caption\">%s</p>\n", html.EscapeString(caption))
	}
	fmt.Fprintf(&b, "<div class=\"doc-body\">%s</div>\n</body>\n</html>\n", highlighted)
	return b.String()
}
