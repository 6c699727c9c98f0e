package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// profileSelectors map profile fields to the CSS selectors of a LinkedIn-style profile page.
var profileSelectors = []struct {
	field    string
	selector string
	sep      string
	first    bool
}{
	{field: "name", selector: "h1", first: true},
	{field: "headline", selector: "div.text-body-medium", first: true},
	{field: "summary", selector: "#about ~ div .pv-shared-text-with-see-more", first: true},
	{field: "experience", selector: "#experience ~ div .pvs-entity", sep: "\n"},
	{field: "education", selector: "#education ~ div .pvs-entity", sep: "\n"},
	{field: "skills", selector: "#skills ~ div .pvs-entity .t-bold span", sep: ", "},
}

// ProfileFields recovers well-known profile fields from a raw profile page.
// Fields that cannot be found are omitted; an unparseable page yields an empty map.
func ProfileFields(html string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(html) == "" {
		return fields
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fields
	}

	for _, sel := range profileSelectors {
		selection := doc.Find(sel.selector)
		if selection.Length() == 0 {
			continue
		}

		if sel.first {
			if text := collapseLines(selection.First().Text()); text != "" {
				fields[sel.field] = text
			}
			continue
		}

		parts := make([]string, 0, selection.Length())
		selection.Each(func(_ int, s *goquery.Selection) {
			if text := collapseLines(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			fields[sel.field] = strings.Join(parts, sel.sep)
		}
	}

	return fields
}
