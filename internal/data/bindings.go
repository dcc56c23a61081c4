package data

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Binding attaches a handler kind to a group of tile identities.
type Binding struct {
	Name    string   `yaml:"name"`
	Handler string   `yaml:"handler"`
	Tiles   []string `yaml:"tiles"`
	Params  Params   `yaml:"params"`
}

// BindingTable is the parsed bindings.yaml, in file order. Order matters:
// later groups win on duplicate tiles.
type BindingTable struct {
	Bindings []Binding
}

// LoadBindings loads bindings.yaml.
func LoadBindings(path string) (*BindingTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings: %w", err)
	}
	t, err := ParseBindings(raw)
	if err != nil {
		return nil, fmt.Errorf("bindings %s: %w", path, err)
	}
	return t, nil
}

func ParseBindings(raw []byte) (*BindingTable, error) {
	var entries []Binding
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse bindings: %w", err)
	}
	for i, b := range entries {
		if b.Name == "" {
			return nil, fmt.Errorf("binding #%d: missing name", i+1)
		}
		if b.Handler == "" {
			return nil, fmt.Errorf("binding %q: missing handler", b.Name)
		}
	}
	return &BindingTable{Bindings: entries}, nil
}

// Count returns the number of binding groups.
func (t *BindingTable) Count() int {
	return len(t.Bindings)
}

// ── Params ──

// Params is the free-form per-binding parameter map.
type Params map[string]any

// Reader returns a typed reader over p. Type errors accumulate and are
// reported together by Err.
func (p Params) Reader() *ParamReader {
	return &ParamReader{p: p}
}

type ParamReader struct {
	p    Params
	errs []error
}

func (r *ParamReader) fail(key string, want string, v any) {
	r.errs = append(r.errs, fmt.Errorf("param %s: want %s, got %T", key, want, v))
}

func (r *ParamReader) String(key, def string) string {
	v, ok := r.p[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "string", v)
		return def
	}
	return s
}

func (r *ParamReader) Int(key string, def int) int {
	v, ok := r.p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	r.fail(key, "integer", v)
	return def
}

func (r *ParamReader) Float(key string, def float64) float64 {
	v, ok := r.p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	r.fail(key, "number", v)
	return def
}

func (r *ParamReader) Bool(key string, def bool) bool {
	v, ok := r.p[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(key, "bool", v)
		return def
	}
	return b
}

// Duration accepts Go duration strings ("250ms") or integer milliseconds.
func (r *ParamReader) Duration(key string, def time.Duration) time.Duration {
	v, ok := r.p[key]
	if !ok {
		return def
	}
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("param %s: %w", key, err))
			return def
		}
		return parsed
	case int:
		return time.Duration(d) * time.Millisecond
	}
	r.fail(key, "duration", v)
	return def
}

func (r *ParamReader) Err() error { return errors.Join(r.errs...) }
