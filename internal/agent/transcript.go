package agent

import (
	"fmt"
	"strings"
)

type EntryKind string

const (
	KindQuery    EntryKind = "query"
	KindResponse EntryKind = "response"
	KindTool     EntryKind = "tool"
	KindFeedback EntryKind = "feedback"
)

type Entry struct {
	Kind EntryKind
	Text string
}

// Transcript is the append-only record of one run.
type Transcript struct {
	entries []Entry
}

func (t *Transcript) Append(kind EntryKind, text string) {
	t.entries = append(t.entries, Entry{Kind: kind, Text: text})
}

func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// Steps returns the tool results and feedback notes restated to the model.
func (t *Transcript) Steps() []string {
	var steps []string
	for _, e := range t.entries {
		if e.Kind == KindTool || e.Kind == KindFeedback {
			steps = append(steps, e.Text)
		}
	}
	return steps
}

// Render joins the steps, newest kept first when the total exceeds maxChars.
// Elided steps are replaced by a single marker; the newest step is always kept.
func (t *Transcript) Render(maxChars int) string {
	steps := t.Steps()
	if len(steps) == 0 {
		return ""
	}

	start := len(steps) - 1
	size := len(steps[start])
	for start > 0 && maxChars > 0 {
		next := size + len(steps[start-1]) + 1
		if next > maxChars {
			break
		}
		size = next
		start--
	}
	if maxChars <= 0 {
		start = 0
	}

	kept := steps[start:]
	if start == 0 {
		return strings.Join(kept, "\n")
	}
	return fmt.Sprintf("[... %d earlier steps omitted ...]\n%s", start, strings.Join(kept, "\n"))
}
