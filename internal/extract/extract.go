// Package extract turns markup and markdown-like model output into plain text.
// None of the functions here fail: malformed input degrades to best-effort text.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern      = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern    = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	headingPattern  = regexp.MustCompile(`^#{1,6}\s*`)
	bulletPattern   = regexp.MustCompile(`^[*+]\s+`)
	emphasisPattern = regexp.MustCompile(`(\*\*|__|\*|` + "`" + `)`)
)

const blockSelector = "p, div, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, section, article, header, footer, blockquote, pre"

// PlainText strips markup syntax and collapses whitespace-only lines so the
// result is a single-newline-separated block of text.
func PlainText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	if !strings.Contains(markup, "<") {
		return collapseLines(markup)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return collapseLines(tagPattern.ReplaceAllString(markup, "\n"))
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	return collapseLines(doc.Text())
}

// Markdown removes markdown decoration (headings, emphasis, code fences) from
// model output while keeping bullet lists readable.
func Markdown(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}

		trimmed = headingPattern.ReplaceAllString(trimmed, "")
		trimmed = bulletPattern.ReplaceAllString(trimmed, "- ")
		trimmed = emphasisPattern.ReplaceAllString(trimmed, "")
		out = append(out, trimmed)
	}

	return collapseLines(strings.Join(out, "\n"))
}

// Value applies PlainText to every string found in v, walking maps and slices.
// Non-string scalars are returned untouched. The input is never mutated.
func Value(v any) any {
	switch typed := v.(type) {
	case string:
		return PlainText(typed)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = Value(val)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = PlainText(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = Value(val)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = PlainText(val)
		}
		return out
	default:
		return v
	}
}

func collapseLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}
