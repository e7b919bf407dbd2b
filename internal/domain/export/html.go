package export

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML converts assembled document text into a standalone HTML page.
func RenderHTML(text string, opts Options) []byte {
	var b strings.Builder

	title := opts.Title
	if title == "" {
		title = "Privacy Policy"
	}

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n<body>\n")

	if opts.Watermark {
		fmt.Fprintf(&b, "<p><strong>%s</strong> &mdash; generated on the free plan. Upgrade to remove this notice.</p>\n", WatermarkText)
	}

	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range ParseLines(text) {
		switch line.Kind {
		case LineHeading:
			closeList()
			level := line.Level
			if level > 6 {
				level = 6
			}
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, html.EscapeString(line.Text), level)
		case LineBullet:
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(line.Text))
		case LineParagraph:
			closeList()
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(line.Text))
		case LineBlank:
			closeList()
		}
	}
	closeList()

	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}
