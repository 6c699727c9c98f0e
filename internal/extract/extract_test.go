package extract

import (
	"reflect"
	"testing"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "  \n ", expect: ""},
		{name: "plain text collapses blank lines", input: "a\n\n  \n b\t\tc ", expect: "a\nb c"},
		{
			name:   "markup with blocks and scripts",
			input:  "<div><p>Hello <b>World</b></p><script>x()</script><p>  </p><ul><li>Go</li><li>Rust</li></ul></div>",
			expect: "Hello World\nGo\nRust",
		},
		{name: "malformed markup", input: "<div><p>Unclosed <b>bold", expect: "Unclosed bold"},
		{name: "line breaks", input: "first<br>second<br/>third", expect: "first\nsecond\nthird"},
		{name: "entities decoded", input: "<p>R&amp;D &gt; sales</p>", expect: "R&D > sales"},
		{name: "comparison is not a tag", input: "x < y and y > z", expect: "x < y and y > z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PlainText(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	input := "```markdown\n### Match Score\n**Score:** 85\n\n* **Go** expert\n- __Kubernetes__\n```"
	expect := "Match Score\nScore: 85\n- Go expert\n- Kubernetes"

	if got := Markdown(input); got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestValue(t *testing.T) {
	input := map[string]any{
		"content":  "<p>Senior <i>Go</i> engineer</p>",
		"years":    7,
		"remote":   true,
		"skills":   []any{"<b>Go</b>", 3.5},
		"contacts": map[string]string{"email": "<span>a@b.c</span>"},
		"tags":     []string{"<em>backend</em>"},
	}

	got := Value(input)

	expect := map[string]any{
		"content":  "Senior Go engineer",
		"years":    7,
		"remote":   true,
		"skills":   []any{"Go", 3.5},
		"contacts": map[string]any{"email": "a@b.c"},
		"tags":     []any{"backend"},
	}

	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("unexpected result:\n got: %#v\nwant: %#v", got, expect)
	}

	if input["content"] != "<p>Senior <i>Go</i> engineer</p>" {
		t.Fatalf("input must not be mutated")
	}
}

func TestProfileFields(t *testing.T) {
	page := `<html><body>
<h1> Jane Doe </h1>
<div class="text-body-medium">Staff Engineer at Acme</div>
<section><div id="about"></div><div><div class="pv-shared-text-with-see-more">Builds distributed systems.</div></div></section>
<section><div id="experience"></div><div>
  <div class="pvs-entity">Acme - Staff Engineer</div>
  <div class="pvs-entity">Initech - Engineer</div>
</div></section>
<section><div id="skills"></div><div>
  <div class="pvs-entity"><span class="t-bold"><span>Go</span></span></div>
  <div class="pvs-entity"><span class="t-bold"><span>Kafka</span></span></div>
</div></section>
</body></html>`

	fields := ProfileFields(page)

	expect := map[string]string{
		"name":       "Jane Doe",
		"headline":   "Staff Engineer at Acme",
		"summary":    "Builds distributed systems.",
		"experience": "Acme - Staff Engineer\nInitech - Engineer",
		"skills":     "Go, Kafka",
	}

	if !reflect.DeepEqual(fields, expect) {
		t.Fatalf("unexpected fields:\n got: %#v\nwant: %#v", fields, expect)
	}

	if got := ProfileFields(""); len(got) != 0 {
		t.Fatalf("expected empty map, got %#v", got)
	}
}
