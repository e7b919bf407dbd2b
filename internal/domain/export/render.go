package export

import "strings"

// The assembler emits a lightweight markup: lines starting with one or more
// '#' characters are headings of that level, lines starting with "- " are
// list items, everything else is paragraph text. Renderers must preserve
// heading text (including section numbers) exactly as emitted.

type LineKind int

const (
	LineBlank LineKind = iota
	LineHeading
	LineBullet
	LineParagraph
)

type Line struct {
	Kind  LineKind
	Level int // heading level, 0 otherwise
	Text  string
}

// Options control presentation-layer protections applied by renderers.
type Options struct {
	Title     string
	Watermark bool
}

// WatermarkText is stamped across free-plan exports.
const WatermarkText = "PREVIEW"

func ParseLines(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for _, line := range raw {
		switch {
		case strings.TrimSpace(line) == "":
			lines = append(lines, Line{Kind: LineBlank})
		case strings.HasPrefix(line, "#"):
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			lines = append(lines, Line{
				Kind:  LineHeading,
				Level: level,
				Text:  strings.TrimSpace(line[level:]),
			})
		case strings.HasPrefix(line, "- "):
			lines = append(lines, Line{Kind: LineBullet, Text: strings.TrimPrefix(line, "- ")})
		default:
			lines = append(lines, Line{Kind: LineParagraph, Text: line})
		}
	}
	return lines
}
