package agent

import (
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/tools"
)

const (
	outreachMinScore = 50
)

// runState tracks what the run has produced so far.
type runState struct {
	score    *tools.ScoreRecord
	outreach string
	notified bool
}

func (s *runState) observe(result *tools.Result) {
	switch out := result.Output.(type) {
	case tools.ScoreRecord:
		record := out
		s.score = &record
	case string:
		if result.Name == tools.GenerateOutreachName {
			s.outreach = out
		}
	case bool:
		if result.Name == tools.SendNotificationsName && out {
			s.notified = true
		}
	}
}

// checkPolicy verifies the declared step order: score first, outreach above 50,
// notifications at or above the notify threshold once a message exists.
func checkPolicy(tool string, s *runState) *PolicyViolation {
	switch tool {
	case tools.GenerateOutreachName:
		if s.score == nil {
			return &PolicyViolation{Tool: tool, Reason: "before the profile was scored"}
		}
		if s.score.Score <= outreachMinScore {
			return &PolicyViolation{Tool: tool, Reason: "with a score of 50 or lower"}
		}
	case tools.SendNotificationsName:
		if s.score == nil {
			return &PolicyViolation{Tool: tool, Reason: "before the profile was scored"}
		}
		if s.score.Score < tools.NotifyThreshold {
			return &PolicyViolation{Tool: tool, Reason: "with a score below 90"}
		}
		if s.outreach == "" {
			return &PolicyViolation{Tool: tool, Reason: "before an outreach message was generated"}
		}
		if s.notified {
			return &PolicyViolation{Tool: tool, Reason: "after notifications were already sent"}
		}
	}
	return nil
}
