// Package protocol classifies raw model responses into actions.
//
// A response is either a tool invocation
//
//	FUNCTION_CALL: score_profile|{"profile_content": "...", "job_description": "..."}
//
// or a final verdict
//
//	FINAL_ANSWER: {"success": true, "matchScore": 87, "message": "..."}
//
// Payloads are parsed permissively (see ParseLiteral) but never executed.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	FunctionCallPrefix = "FUNCTION_CALL:"
	FinalAnswerPrefix  = "FINAL_ANSWER:"
)

// Action is the parsed intent of one model response: a ToolCall or a FinalAnswer.
type Action interface {
	action()
}

// ToolCall asks the controller to invoke a registered tool.
type ToolCall struct {
	Name   string
	Params map[string]any
}

// FinalAnswer carries the model's own verdict payload.
type FinalAnswer struct {
	Result map[string]any
}

func (ToolCall) action()    {}
func (FinalAnswer) action() {}

// String renders the call back in wire form.
func (c ToolCall) String() string {
	params, err := json.Marshal(c.Params)
	if err != nil {
		return fmt.Sprintf("%s|%v", c.Name, c.Params)
	}
	return c.Name + "|" + string(params)
}

// ParseAction classifies response and recovers its payload.
//
// It fails with *ProtocolError when the response starts with neither recognised
// prefix, and with *ParameterFormatError when the payload cannot be parsed into a
// mapping.
func ParseAction(response string) (Action, error) {
	text := stripFence(response)

	switch {
	case strings.HasPrefix(text, FunctionCallPrefix):
		return parseToolCall(strings.TrimPrefix(text, FunctionCallPrefix))
	case strings.HasPrefix(text, FinalAnswerPrefix):
		return parseFinalAnswer(strings.TrimPrefix(text, FinalAnswerPrefix))
	default:
		return nil, &ProtocolError{Response: response}
	}
}

func parseToolCall(rest string) (Action, error) {
	name, payload, _ := strings.Cut(rest, "|")

	name = strings.Trim(strings.TrimSpace(name), "`\"'")
	if name == "" {
		return nil, &ParameterFormatError{Kind: KindToolParams, Payload: rest, Err: errMissingToolName}
	}

	params, err := ParseLiteral(payload)
	if err != nil {
		return nil, &ParameterFormatError{Kind: KindToolParams, Tool: name, Payload: payload, Err: err}
	}

	return ToolCall{Name: name, Params: params}, nil
}

func parseFinalAnswer(payload string) (Action, error) {
	result, err := ParseLiteral(payload)
	if err == nil {
		return FinalAnswer{Result: result}, nil
	}

	// One more attempt with every boolean/null spelling folded to the canonical form.
	result, retryErr := ParseLiteral(normalizeLiterals(payload, foldedLiterals))
	if retryErr == nil {
		return FinalAnswer{Result: result}, nil
	}

	return nil, &ParameterFormatError{Kind: KindFinalAnswer, Payload: payload, Err: err}
}

// stripFence trims whitespace and removes a markdown code fence wrapping the whole text.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{:|") {
		// drop the info string, e.g. ```json
		text = text[nl+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}
