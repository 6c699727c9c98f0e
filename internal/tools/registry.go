package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/protocol"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/utils"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
)

const paramsPreviewLength = 200

// DefaultAliases maps legacy tool names to their registered names.
var DefaultAliases = map[string]string{
	"calculate_profile_score": ScoreProfileName,
}

// Result is the outcome of one successful invocation.
type Result struct {
	Name     string
	Output   any
	Summary  string
	Duration time.Duration
}

type entry struct {
	tool   Tool
	schema *jsonschema.Schema
}

// Registry maps tool names to tools. It is read-only after NewRegistry and is
// safe for concurrent use.
type Registry struct {
	entries map[string]entry
	order   []string
	aliases map[string]string
	logger  *zap.Logger
}

// NewRegistry compiles the schema of every tool. Duplicate names are rejected.
func NewRegistry(logger *zap.Logger, tools ...Tool) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		entries: make(map[string]entry, len(tools)),
		aliases: make(map[string]string),
		logger:  logger,
	}

	for _, tool := range tools {
		name := strings.TrimSpace(tool.Name())
		if name == "" {
			return nil, errors.New("tool name must not be empty")
		}
		if _, exists := r.entries[name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}

		schema, err := compileSchema(name, tool.Schema())
		if err != nil {
			return nil, fmt.Errorf("compile schema of %s: %w", name, err)
		}

		r.entries[name] = entry{tool: tool, schema: schema}
		r.order = append(r.order, name)
	}

	for alias, target := range DefaultAliases {
		if _, ok := r.entries[target]; ok {
			if _, taken := r.entries[alias]; !taken {
				r.aliases[alias] = target
			}
		}
	}

	return r, nil
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}

	doc, err := toJSONValue(schema)
	if err != nil {
		return nil, err
	}

	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// toJSONValue re-reads v the way the schema library expects its inputs.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// Names lists the registered tools in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Resolve returns the registered name for name or one of its aliases.
func (r *Registry) Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if _, ok := r.entries[name]; ok {
		return name, true
	}
	target, ok := r.aliases[name]
	return target, ok
}

// Invoke validates params against the tool's schema and calls it.
func (r *Registry) Invoke(ctx context.Context, name string, params map[string]any) (*Result, error) {
	canonical, ok := r.Resolve(name)
	if !ok {
		r.logger.Warn("tool not found", zap.String("tool", name))
		return nil, &DispatchError{Name: name, Known: r.Names()}
	}
	if params == nil {
		params = map[string]any{}
	}

	e := r.entries[canonical]
	preview := utils.PreviewForLog(params, paramsPreviewLength)
	logger := r.logger.With(zap.String("tool", canonical))

	fail := func(err error) (*Result, error) {
		logger.Error("tool invocation failed", zap.String("params", preview), zap.Error(err))
		return nil, &InvocationError{Tool: canonical, Params: preview, Err: err}
	}

	instance, err := toJSONValue(params)
	if err != nil {
		return fail(fmt.Errorf("encode parameters: %w", err))
	}
	if err := e.schema.Validate(instance); err != nil {
		return fail(fmt.Errorf("invalid parameters: %w", err))
	}

	logger.Info("calling tool", zap.String("params", preview))

	started := time.Now()
	output, err := call(ctx, e.tool, params)
	if err != nil {
		return fail(err)
	}

	result := &Result{
		Name:     canonical,
		Output:   output,
		Summary:  protocol.String(output),
		Duration: time.Since(started),
	}

	logger.Info("tool completed",
		zap.Duration("elapsed", result.Duration),
		zap.String("result_preview", utils.TruncateForLog(result.Summary, paramsPreviewLength)),
	)

	return result, nil
}

func call(ctx context.Context, tool Tool, params map[string]any) (output any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return tool.Call(ctx, params)
}

// Describe renders the numbered tool catalogue used in the instruction preamble.
func (r *Registry) Describe() string {
	var b strings.Builder
	for i, name := range r.order {
		tool := r.entries[name].tool
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s -> %s", i+1, tool.Signature(), tool.Description())
	}
	return b.String()
}
