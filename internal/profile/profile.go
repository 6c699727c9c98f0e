// Package profile holds the candidate profile as received from callers and the
// cleaned, bounded text derived from it for prompting.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/extract"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/section"
)

const (
	MinChars     = 1000
	MaxChars     = 5000
	DefaultChars = MinChars

	defaultName = "Candidate"
)

var ErrEmpty = errors.New("profile is empty")

// Profile is either raw page markup or a mapping of named fields.
type Profile struct {
	Raw    string
	Fields map[string]any
}

// Details are the well-known fields the tools care about.
type Details struct {
	Name     string `mapstructure:"name"`
	Headline string `mapstructure:"headline"`
	Email    string `mapstructure:"email"`
	Phone    string `mapstructure:"phone"`
	Intro    struct {
		Name     string `mapstructure:"name"`
		Headline string `mapstructure:"headline"`
	} `mapstructure:"intro"`
}

// FromValue builds a Profile from a decoded request value.
func FromValue(v any) (Profile, error) {
	switch val := v.(type) {
	case nil:
		return Profile{}, ErrEmpty
	case string:
		if strings.TrimSpace(val) == "" {
			return Profile{}, ErrEmpty
		}
		return Profile{Raw: val}, nil
	case map[string]any:
		if len(val) == 0 {
			return Profile{}, ErrEmpty
		}
		return Profile{Fields: val}, nil
	default:
		return Profile{}, fmt.Errorf("unsupported profile type %T: expected text or an object", v)
	}
}

// ClampChars bounds a configured character limit to the accepted range.
// Zero or negative selects the default.
func ClampChars(limit int) int {
	if limit <= 0 {
		return DefaultChars
	}
	return section.Clamp(limit, MinChars, MaxChars)
}

// Clean reduces the profile to plain text of at most limit characters.
func (p Profile) Clean(limit int) string {
	limit = ClampChars(limit)

	var text string
	switch {
	case p.Fields != nil:
		cleaned := extract.Value(p.Fields)
		data, err := json.Marshal(cleaned)
		if err != nil {
			text = fmt.Sprintf("%v", cleaned)
		} else {
			text = string(data)
		}
	default:
		text = extract.PlainText(p.Raw)
	}

	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return text
}

// Data returns the profile as a field mapping. Raw markup yields whatever
// fields can be recovered from the page.
func (p Profile) Data() map[string]any {
	if p.Fields != nil {
		return p.Fields
	}

	fields := extract.ProfileFields(p.Raw)
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		data[k] = v
	}
	return data
}

// Details decodes the well-known fields. Missing or mistyped fields are left empty.
func (p Profile) Details() Details {
	return DetailsOf(p.Data())
}

// DetailsOf decodes well-known fields from an arbitrary mapping.
func DetailsOf(data map[string]any) Details {
	var d Details
	if len(data) == 0 {
		return d
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &d,
	})
	if err != nil {
		return d
	}
	// partial results are kept on error
	_ = decoder.Decode(data)

	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = strings.TrimSpace(d.Intro.Name)
	}
	d.Headline = strings.TrimSpace(d.Headline)
	if d.Headline == "" {
		d.Headline = strings.TrimSpace(d.Intro.Headline)
	}
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)

	return d
}

// DisplayName is the name used in greetings.
func (d Details) DisplayName() string {
	if d.Name == "" {
		return defaultName
	}
	return d.Name
}
