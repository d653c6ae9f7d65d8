package game

import "strings"

// RuleOption describes one configurable rule of a game kind: its type,
// default, and the values it accepts. Descriptors are static per kind and
// enforced once, at match creation.
type RuleOption struct {
	Type          string        `json:"type"` // "integer", "number", "boolean" or "string"
	Default       interface{}   `json:"default"`
	AllowedValues []interface{} `json:"allowed_values,omitempty"`
	Min           *float64      `json:"min,omitempty"`
	Max           *float64      `json:"max,omitempty"`
	Description   string        `json:"description"`
}

// RuleSet holds the user-supplied rule overrides for a match, as decoded
// from JSON. Values are validated against the kind's descriptor at engine
// construction; accessors fall back to defaults afterwards.
type RuleSet map[string]interface{}

// validate checks every supplied key against the descriptor. Unknown keys
// are rejected outright; nil values fall through to the option default.
func (r RuleSet) validate(opts map[string]RuleOption) error {
	for name, value := range r {
		opt, ok := opts[name]
		if !ok {
			return configError("unknown rule %q", name)
		}
		if value == nil {
			continue
		}
		if err := opt.check(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (o RuleOption) check(name string, value interface{}) error {
	switch o.Type {
	case "integer":
		n, ok := asInt(value)
		if !ok {
			return configError("%s must be an integer", name)
		}
		return o.checkNumeric(name, float64(n), value)
	case "number", "float":
		f, ok := asFloat(value)
		if !ok {
			return configError("%s must be a number", name)
		}
		return o.checkNumeric(name, f, value)
	case "boolean":
		if _, ok := value.(bool); ok {
			break
		}
		// Some clients send yes/no strings instead of booleans.
		if s, ok := value.(string); ok {
			switch strings.ToLower(s) {
			case "yes", "no", "true", "false", "1", "0":
				break
			default:
				return configError("%s must be a boolean", name)
			}
		} else {
			return configError("%s must be a boolean", name)
		}
	case "string":
		if _, ok := value.(string); !ok {
			return configError("%s must be a string", name)
		}
	}
	return o.checkAllowed(name, value)
}

func (o RuleOption) checkNumeric(name string, f float64, raw interface{}) error {
	if o.Min != nil && f < *o.Min {
		return configError("%s must be at least %v", name, *o.Min)
	}
	if o.Max != nil && f > *o.Max {
		return configError("%s must be at most %v", name, *o.Max)
	}
	return o.checkAllowed(name, raw)
}

func (o RuleOption) checkAllowed(name string, value interface{}) error {
	if o.AllowedValues == nil {
		return nil
	}
	for _, allowed := range o.AllowedValues {
		if valueEqual(allowed, value) {
			return nil
		}
	}
	return configError("%s value %v is not allowed (allowed: %v)", name, value, o.AllowedValues)
}

// valueEqual compares descriptor values with JSON-decoded overrides, where
// all numbers arrive as float64.
func valueEqual(a, b interface{}) bool {
	if af, ok := asFloat(a); ok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Int returns the rule value as an int, or def when absent.
func (r RuleSet) Int(name string, def int) int {
	if v, ok := r[name]; ok && v != nil {
		if n, ok := asInt(v); ok {
			return n
		}
	}
	return def
}

// String returns the rule value as a string, or def when absent.
func (r RuleSet) String(name, def string) string {
	if v, ok := r[name]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the rule value as a boolean, or def when absent. String
// values are accepted for clients that send "yes"/"no" or "true"/"false".
func (r RuleSet) Bool(name string, def bool) bool {
	v, ok := r[name]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "yes", "true", "1":
			return true
		case "no", "false", "0":
			return false
		}
	}
	return def
}

func fptr(f float64) *float64 { return &f }

// withTimingOptions merges the timing rules shared by every game kind into
// a kind's own descriptor.
func withTimingOptions(opts map[string]RuleOption) map[string]RuleOption {
	opts["timeout_type"] = RuleOption{
		Type:          "string",
		AllowedValues: []interface{}{"none", "total_time", "per_turn"},
		Default:       "none",
		Description:   "Clock mode: none, total_time budget per player, or per_turn limit",
	}
	opts["timeout_seconds"] = RuleOption{
		Type:          "integer",
		AllowedValues: []interface{}{10, 15, 30, 60, 120, 300, 600},
		Default:       300,
		Description:   "Clock duration in seconds; only applies when timeout_type is not none",
	}
	opts["timeout_action"] = RuleOption{
		Type:          "string",
		AllowedValues: []interface{}{"end_game", "skip_turn", "eliminate_player"},
		Default:       "end_game",
		Description:   "Consequence of running out of time",
	}
	return opts
}
