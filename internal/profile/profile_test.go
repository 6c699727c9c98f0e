package profile

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValue(t *testing.T) {
	p, err := FromValue("<h1>Jane</h1>")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Jane</h1>", p.Raw)

	p, err = FromValue(map[string]any{"name": "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.Fields["name"])

	for _, empty := range []any{nil, "  ", map[string]any{}} {
		_, err = FromValue(empty)
		assert.True(t, errors.Is(err, ErrEmpty), "value %#v", empty)
	}

	_, err = FromValue(42)
	assert.Error(t, err)
}

func TestClampChars(t *testing.T) {
	assert.Equal(t, DefaultChars, ClampChars(0))
	assert.Equal(t, MinChars, ClampChars(10))
	assert.Equal(t, 2500, ClampChars(2500))
	assert.Equal(t, MaxChars, ClampChars(100000))
}

func TestCleanBoundsLength(t *testing.T) {
	raw := "<div><p>" + strings.Repeat("é", 3000) + "</p></div>"

	text := Profile{Raw: raw}.Clean(1000)
	assert.Equal(t, 1000, utf8.RuneCountInString(text))
	assert.NotContains(t, text, "<")

	text = Profile{Raw: raw}.Clean(0)
	assert.Equal(t, DefaultChars, utf8.RuneCountInString(text))
}

func TestCleanFields(t *testing.T) {
	p := Profile{Fields: map[string]any{
		"name":       "Jane",
		"content":    "<p>Go <b>engineer</b></p>\n\n\n<p>Berlin</p>",
		"experience": []any{"<li>Acme</li>"},
		"years":      7,
	}}

	text := p.Clean(MinChars)
	assert.Contains(t, text, `"name":"Jane"`)
	assert.Contains(t, text, `"years":7`)
	assert.Contains(t, text, "Acme")
	assert.NotContains(t, text, "<b>")
}

func TestDetails(t *testing.T) {
	d := Profile{Fields: map[string]any{
		"intro": map[string]any{"name": " Jane Doe ", "headline": "Staff Engineer"},
		"email": "jane@example.com",
		"phone": 15550100,
	}}.Details()

	assert.Equal(t, "Jane Doe", d.Name)
	assert.Equal(t, "Staff Engineer", d.Headline)
	assert.Equal(t, "jane@example.com", d.Email)
	assert.Equal(t, "15550100", d.Phone)
	assert.Equal(t, "Jane Doe", d.DisplayName())

	assert.Equal(t, "Candidate", DetailsOf(nil).DisplayName())
	assert.Equal(t, "Candidate", DetailsOf(map[string]any{"name": []any{"x"}}).DisplayName())
}

func TestDetailsFromMarkup(t *testing.T) {
	p := Profile{Raw: `<html><body><h1>Jane Doe</h1><div class="text-body-medium">Backend Engineer</div></body></html>`}

	d := p.Details()
	assert.Equal(t, "Jane Doe", d.Name)
	assert.Equal(t, "Backend Engineer", d.Headline)
	assert.Equal(t, "Jane Doe", p.Data()["name"])
}
