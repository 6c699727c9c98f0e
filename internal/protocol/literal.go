package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// literalTable maps a bare word found outside string literals to its replacement.
type literalTable func(word string) (string, bool)

// pythonLiterals rewrites the literal spellings models borrow from Python.
func pythonLiterals(word string) (string, bool) {
	switch word {
	case "None":
		return "null", true
	case "True":
		return "true", true
	case "False":
		return "false", true
	}
	return "", false
}

// foldedLiterals rewrites any casing of the boolean and null literals.
func foldedLiterals(word string) (string, bool) {
	switch strings.ToLower(word) {
	case "true":
		return "true", true
	case "false":
		return "false", true
	case "none", "null", "nil":
		return "null", true
	}
	return "", false
}

// ParseLiteral parses a loosely JSON-like mapping literal.
//
// The payload is tried as strict JSON, then as JSON after rewriting Python-style
// literals (None, True, False) outside of strings, then as a YAML flow mapping,
// which accepts single-quoted strings and unquoted keys. When the payload carries
// surrounding prose, the first balanced {...} block is tried the same way.
// An empty payload yields an empty mapping.
func ParseLiteral(payload string) (map[string]any, error) {
	text := stripFence(payload)
	if text == "" {
		return map[string]any{}, nil
	}

	candidates := []string{text}
	if obj, ok := balancedObject(text); ok && obj != text {
		candidates = append(candidates, obj)
	}

	var firstErr error
	for _, candidate := range candidates {
		result, err := parseMapping(candidate)
		if err == nil {
			return result, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return nil, firstErr
}

func parseMapping(text string) (map[string]any, error) {
	if result, err := decodeJSON(text); err == nil {
		return result, nil
	}

	normalized := normalizeLiterals(text, pythonLiterals)
	result, jsonErr := decodeJSON(normalized)
	if jsonErr == nil {
		return result, nil
	}

	if result, err := decodeYAML(normalized); err == nil {
		return result, nil
	}

	return nil, jsonErr
}

func decodeJSON(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after literal")
	}

	return asMapping(normalizeValue(value))
}

func decodeYAML(text string) (map[string]any, error) {
	var value any
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}

	return asMapping(normalizeValue(value))
}

func asMapping(value any) (map[string]any, error) {
	result, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", value)
	}
	return result, nil
}

// normalizeValue converts decoder-specific types into plain Go values:
// integral numbers become int, other numbers float64, and every mapping
// becomes map[string]any.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalizeValue(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalizeValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeValue(v)
		}
		return out
	default:
		return value
	}
}

// normalizeLiterals rewrites bare words outside of quoted strings using table.
// A word is only rewritten when it is a whole value: preceded by the start of
// text or one of ":,[{" and followed by one of ",}]" or the end of text, so
// prose such as "None of the skills match" is left alone.
func normalizeLiterals(text string, table literalTable) string {
	runes := []rune(text)

	var (
		out    strings.Builder
		quote  rune
		escape bool
		prev   rune
	)

	for i := 0; i < len(runes); {
		r := runes[i]

		if quote != 0 {
			out.WriteRune(r)
			switch {
			case escape:
				escape = false
			case r == '\\':
				escape = true
			case r == quote:
				quote = 0
			}
			prev = r
			i++
			continue
		}

		if r == '_' || unicode.IsLetter(r) {
			j := i + 1
			for j < len(runes) && (runes[j] == '_' || unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			word := string(runes[i:j])
			if startsValue(prev) && endsValue(runes[j:]) {
				if replacement, ok := table(word); ok {
					word = replacement
				}
			}
			out.WriteString(word)
			prev = runes[j-1]
			i = j
			continue
		}

		if r == '"' || r == '\'' {
			quote = r
		}
		out.WriteRune(r)
		if !unicode.IsSpace(r) {
			prev = r
		}
		i++
	}

	return out.String()
}

func startsValue(prev rune) bool {
	switch prev {
	case 0, ':', ',', '[', '{':
		return true
	}
	return false
}

func endsValue(rest []rune) bool {
	for _, r := range rest {
		if unicode.IsSpace(r) {
			continue
		}
		return r == ',' || r == '}' || r == ']'
	}
	return true
}

// balancedObject returns the first {...} block of text, honouring quoted strings.
func balancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	var (
		depth  int
		quote  rune
		escape bool
	)

	for i, r := range text[start:] {
		if quote != 0 {
			switch {
			case escape:
				escape = false
			case r == '\\':
				escape = true
			case r == quote:
				quote = 0
			}
			continue
		}

		switch r {
		case '"', '\'':
			quote = r
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : start+i+1], true
			}
		}
	}

	return "", false
}
