package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/spektrchart/engine"
)

// ============================================================================
// CHART CONFIG LOADING — YAML or JSON documents → engine.ChartConfig
// ============================================================================
// Accepted documents:
//   - a bare chart config:        selectedChartType: bar, axis: {...}
//   - a metric file wrapping one: name: ..., chartConfig: {...}
//
// Keys may be camelCase or snake_case (bar_sort_by). Column names inside
// columnSettings are kept verbatim. Unknown keys are rejected so typos do
// not silently fall back to defaults.
// ============================================================================

// LoadChartConfig parses and validates a chart config document.
func LoadChartConfig(data []byte) (engine.ChartConfig, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engine.ChartConfig{}, fmt.Errorf("parse chart config: %w", err)
	}
	if doc == nil {
		return engine.ChartConfig{}, fmt.Errorf("parse chart config: empty document")
	}

	root, ok := normalizeKeys(doc, false).(map[string]any)
	if !ok {
		return engine.ChartConfig{}, fmt.Errorf("parse chart config: expected a mapping at the top level")
	}
	if inner, ok := root["chartConfig"]; ok {
		if root, ok = inner.(map[string]any); !ok {
			return engine.ChartConfig{}, fmt.Errorf("parse chart config: chartConfig must be a mapping")
		}
	}

	cfg, err := DecodeChartConfig(root)
	if err != nil {
		return engine.ChartConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return engine.ChartConfig{}, err
	}
	return cfg, nil
}

// DecodeChartConfig converts a generic decoded document (from YAML, JSON or
// msgpack) into a ChartConfig through its JSON field names.
func DecodeChartConfig(v any) (engine.ChartConfig, error) {
	var cfg engine.ChartConfig
	raw, err := json.Marshal(v)
	if err != nil {
		return cfg, fmt.Errorf("encode chart config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode chart config: %w", err)
	}
	return cfg, nil
}

// normalizeKeys converts snake_case mapping keys to camelCase. Keys of the
// columnSettings mapping are column names and stay untouched.
func normalizeKeys(v any, preserve bool) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key := k
			if !preserve {
				key = toCamelCase(k)
			}
			out[key] = normalizeKeys(val, key == "columnSettings" && !preserve)
		}
		return out
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return normalizeKeys(m, preserve)
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeKeys(val, false)
		}
		return out
	}
	return v
}

// toCamelCase converts "bar_sort_by" → "barSortBy". Keys without an
// underscore are returned unchanged.
func toCamelCase(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
