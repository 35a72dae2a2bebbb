package composition

import "fmt"

// Workflow represents the entire composition workflow
type Workflow struct {
	// Name of the workflow (required)
	Name string `mapstructure:"name"`

	// Optional description of the workflow
	Description string `mapstructure:"description,omitempty"`

	// Version of the workflow definition
	Version string `mapstructure:"version,omitempty"`

	// Author or creator of the workflow
	Author string `mapstructure:"author,omitempty"`

	// Named guard conditions that steps reference through "if"
	Guards map[string]string `mapstructure:"guards,omitempty"`

	// Ordered list of steps to execute
	Steps []Step `mapstructure:"steps"`

	// Variables that seed the context and can be referenced in step parameters
	Variables map[string]interface{} `mapstructure:"variables,omitempty"`
}

// Step represents a single step in the composition workflow
type Step struct {
	// Unique name for the step (required)
	Name string `mapstructure:"name"`

	// Type of operation to perform (required)
	Type string `mapstructure:"type"`

	// Optional human-readable description of the step
	Description string `mapstructure:"description,omitempty"`

	// Optional name of a workflow guard that must hold for the step to run
	If string `mapstructure:"if,omitempty"`

	// Optional inline condition, compiled into an unnamed guard
	Condition string `mapstructure:"condition,omitempty"`

	// Flexible parameters for the step
	// Uses ",remain" to capture all additional parameters
	Parameters map[string]interface{} `mapstructure:",remain"`
}

// param returns the parameter as a string; scalars decoded as bools or
// numbers are formatted, a missing key yields ""
func (s Step) param(key string) string {
	switch v := s.Parameters[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// paramOr returns the string parameter or def when it is empty
func (s Step) paramOr(key, def string) string {
	if v := s.param(key); v != "" {
		return v
	}
	return def
}

// outputKey is the context key a step writes its result to
func (s Step) outputKey() string {
	return s.paramOr("output", s.Name)
}
