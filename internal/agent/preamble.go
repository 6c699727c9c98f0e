package agent

import (
	"fmt"
	"strings"
)

const preambleTemplate = `You are a recruitment agent analyzing profiles. Respond with EXACTLY ONE of these formats:
1. FUNCTION_CALL: function_name|{"param1": value1, "param2": value2}
2. FINAL_ANSWER: {"success": bool, "matchScore": int, "message": str}

Available functions:
%s

Follow these steps:
1. Calculate profile score
2. If score > 50, generate message
3. If score > 90, send notifications
4. Return final result`

const nextStepQuestion = "What should I do next?"

func buildPreamble(catalogue string) string {
	return fmt.Sprintf(preambleTemplate, catalogue)
}

func initialQuery(profileText, job string) string {
	return fmt.Sprintf("Analyze profile:\nProfile: %s\nJob: %s", profileText, job)
}

func buildPrompt(preamble, query string, t *Transcript, maxChars int) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\nQuery: ")
	b.WriteString(query)

	if steps := t.Render(maxChars); steps != "" {
		b.WriteString("\n\n")
		b.WriteString(steps)
		b.WriteString("\n")
		b.WriteString(nextStepQuestion)
	}
	return b.String()
}
