package tools

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/protocol"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/section"
)

const GenerateOutreachName = "generate_outreach_message"

var outreachTemplate = template.Must(template.New("outreach").Parse(`Hi {{.Name}},

Great news! Based on our analysis, your profile is an excellent match ({{.Score}}%) for the position.

{{.Message}}

Best regards,
Recruitment Team`))

// RenderOutreach fills the outreach template. An empty name becomes "Candidate".
func RenderOutreach(name string, score int, message string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Candidate"
	}

	var b strings.Builder
	data := struct {
		Name    string
		Score   int
		Message string
	}{Name: name, Score: section.ClampScore(score), Message: strings.TrimSpace(message)}

	if err := outreachTemplate.Execute(&b, data); err != nil {
		return fmt.Sprintf("Hi %s,\n\n%s", name, data.Message)
	}
	return b.String()
}

// GenerateOutreach renders the outreach message without a model call.
type GenerateOutreach struct{}

type outreachParams struct {
	Name           string `mapstructure:"name"`
	Score          any    `mapstructure:"score"`
	MessageSection string `mapstructure:"message_section"`
}

func (GenerateOutreach) Name() string { return GenerateOutreachName }

func (GenerateOutreach) Description() string { return "Returns formatted message" }

func (GenerateOutreach) Signature() string {
	return "generate_outreach_message(name, score, message_section)"
}

func (GenerateOutreach) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"score"},
		"properties": map[string]any{
			"name":            map[string]any{"type": []string{"string", "null"}},
			"score":           map[string]any{"type": []string{"integer", "number", "string"}},
			"message_section": map[string]any{"type": []string{"string", "null"}},
		},
	}
}

func (GenerateOutreach) Call(ctx context.Context, params map[string]any) (any, error) {
	var p outreachParams
	if err := decodeParams(params, &p); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}

	score, ok := protocol.Int(p.Score)
	if !ok {
		return nil, fmt.Errorf("score %v is not a number", p.Score)
	}

	if strings.TrimSpace(p.Name) == "" {
		if run, ok := RunFrom(ctx); ok {
			p.Name = run.Profile.Details().Name
		}
	}

	return RenderOutreach(p.Name, score, p.MessageSection), nil
}
