package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/section"
)

const ScoreProfileName = "score_profile"

//go:embed score_prompt.md
var scorePromptTemplate string

const notAvailable = "N/A"

// ScoreRecord is the structured outcome of scoring one profile.
type ScoreRecord struct {
	Score           int    `json:"score"`
	MatchAnalysis   string `json:"matchAnalysis"`
	Qualifications  string `json:"qualifications"`
	OutreachMessage string `json:"message"`
}

// ScoreProfile asks the generator for a sectioned markdown assessment.
type ScoreProfile struct {
	generator ai.Generator
}

func NewScoreProfile(generator ai.Generator) *ScoreProfile {
	return &ScoreProfile{generator: generator}
}

type scoreParams struct {
	ProfileContent string `mapstructure:"profile_content"`
	JobDescription string `mapstructure:"job_description"`
	ProfileData    any    `mapstructure:"profile_data"`
}

func (s *ScoreProfile) Name() string { return ScoreProfileName }

func (s *ScoreProfile) Description() string {
	return "Returns score and analysis"
}

func (s *ScoreProfile) Signature() string {
	return "score_profile(profile_content, job_description, profile_data)"
}

func (s *ScoreProfile) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"profile_content": map[string]any{"type": []string{"string", "null"}},
			"job_description": map[string]any{"type": []string{"string", "null"}},
			"profile_data":    map[string]any{"type": []string{"object", "string", "null"}},
		},
	}
}

func (s *ScoreProfile) Call(ctx context.Context, params map[string]any) (any, error) {
	var p scoreParams
	if err := decodeParams(params, &p); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}

	run, _ := RunFrom(ctx)
	if strings.TrimSpace(p.ProfileContent) == "" {
		p.ProfileContent = run.ProfileText
	}
	if strings.TrimSpace(p.JobDescription) == "" {
		p.JobDescription = run.JobDescription
	}
	if strings.TrimSpace(p.ProfileContent) == "" || strings.TrimSpace(p.JobDescription) == "" {
		return nil, errors.New("profile_content and job_description are required")
	}

	details := run.Profile.Details()
	if data, ok := p.ProfileData.(map[string]any); ok {
		details = profile.DetailsOf(data)
	}

	if run.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, run.StepTimeout)
		defer cancel()
	}

	raw, err := s.generator.GenerateContent(ctx, buildScorePrompt(p.ProfileContent, p.JobDescription, details))
	if err != nil {
		return nil, fmt.Errorf("score profile: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("score profile: %w", ai.ErrEmptyResponse)
	}

	return ParseScore(raw), nil
}

func buildScorePrompt(profileContent, jobDescription string, details profile.Details) string {
	name, headline := details.Name, details.Headline
	if name == "" {
		name = notAvailable
	}
	if headline == "" {
		headline = notAvailable
	}

	return strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription),
		"{{PROFILE_CONTENT}}", strings.TrimSpace(profileContent),
		"{{NAME}}", name,
		"{{HEADLINE}}", headline,
	).Replace(scorePromptTemplate)
}

// ParseScore reads a sectioned assessment. Missing sections stay empty and the
// score is always within 0..100.
func ParseScore(text string) ScoreRecord {
	sections := section.Split(text, section.ScoreMarkers)

	return ScoreRecord{
		Score:           section.ClampScore(section.ExtractScore(text)),
		MatchAnalysis:   sections[section.MatchAnalysis],
		Qualifications:  sections[section.Qualifications],
		OutreachMessage: sections[section.Message],
	}
}
