package protocol

import (
	"errors"
	"fmt"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/utils"
)

const previewLength = 120

// Payload kinds reported by ParameterFormatError.
const (
	KindToolParams  = "tool parameters"
	KindFinalAnswer = "final answer"
)

var errMissingToolName = errors.New("missing function name before '|'")

// ProtocolError reports a response that matches neither action shape.
type ProtocolError struct {
	Response string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("response is neither %s nor %s: %q",
		FunctionCallPrefix, FinalAnswerPrefix, utils.TruncateForLog(e.Response, previewLength))
}

// ParameterFormatError reports a payload that could not be parsed into a mapping.
type ParameterFormatError struct {
	Kind    string
	Tool    string
	Payload string
	Err     error
}

func (e *ParameterFormatError) Error() string {
	subject := e.Kind
	if e.Tool != "" {
		subject = fmt.Sprintf("%s of %s", e.Kind, e.Tool)
	}
	return fmt.Sprintf("malformed %s %q: %v", subject, utils.TruncateForLog(e.Payload, previewLength), e.Err)
}

func (e *ParameterFormatError) Unwrap() error {
	return e.Err
}
