package composition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/config"
	"github.com/spf13/viper"
)

// LoadWorkflow loads a composition workflow from a file
func LoadWorkflow(filePath string) (*Workflow, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading workflow file: %w", err)
	}

	// Determine the file extension for type, defaulting to YAML
	format := "yaml"
	if ext := strings.ToLower(filepath.Ext(filePath)); ext != "" {
		format = ext[1:]
	}

	return ParseWorkflow(data, format)
}

// ParseWorkflow parses a workflow document in the given viper config format (yaml, json, toml)
func ParseWorkflow(data []byte, format string) (*Workflow, error) {
	v := viper.New()
	v.SetConfigType(format)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidWorkflow, err)
	}

	workflow := &Workflow{}
	if err := v.Unmarshal(workflow); err != nil {
		return nil, fmt.Errorf("error parsing workflow: %w", err)
	}

	if workflow.Variables == nil {
		workflow.Variables = make(map[string]interface{})
	}
	if workflow.Guards == nil {
		workflow.Guards = make(map[string]string)
	}

	return workflow, nil
}

// systemVariables returns the variables every run starts with
func systemVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"temp_dir":  config.Instance.Workflow.TempDir,
		"cache_dir": config.Instance.Workflow.CacheDir,
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	}

	if cwd, err := os.Getwd(); err == nil {
		vars["current_dir"] = cwd
	}

	return vars
}

// ValidateWorkflow validates the workflow structure and parameters.
// Guard names are resolved at run time and are not checked here.
func ValidateWorkflow(workflow *Workflow) []error {
	var errs []error

	if workflow.Name == "" {
		errs = append(errs, fmt.Errorf("%w: workflow name is required", errors.ErrInvalidWorkflow))
	}

	seen := make(map[string]bool)
	for i, step := range workflow.Steps {
		if step.Name == "" {
			errs = append(errs, fmt.Errorf("step %d: name is required", i+1))
		} else if seen[step.Name] {
			errs = append(errs, fmt.Errorf("step %d (%s): duplicate step name", i+1, step.Name))
		}
		seen[step.Name] = true

		if step.If != "" && step.Condition != "" {
			errs = append(errs, fmt.Errorf("step %d (%s): 'if' and 'condition' are mutually exclusive", i+1, step.Name))
		}

		if step.Type == "" {
			errs = append(errs, fmt.Errorf("step %d (%s): type is required", i+1, step.Name))
			continue
		}

		if !isValidStepType(step.Type) {
			errs = append(errs, fmt.Errorf("step %d (%s): %w '%s'", i+1, step.Name, errors.ErrUnknownStepType, step.Type))
			continue
		}

		for _, err := range validateStepParameters(step) {
			errs = append(errs, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err))
		}
	}

	return errs
}

// isValidStepType checks if a step type has a handler
func isValidStepType(stepType string) bool {
	_, ok := stepHandlers[stepType]
	return ok
}

// requiredParameters lists the parameters each step type cannot run without
var requiredParameters = map[string][]string{
	"assert":   {"expect"},
	"hash":     {"input"},
	"compress": {"format", "source", "destination"},
	"extract":  {"source", "destination"},
	"plist":    {"input", "key"},
	"json":     {"input", "key"},
	"download": {"url", "destination"},
	"scan":     {"input"},
	"copy":     {"source", "destination"},
	"move":     {"source", "destination"},
	"delete":   {"path"},
}

// validateStepParameters validates parameters for a specific step type
func validateStepParameters(step Step) []error {
	var errs []error

	for _, key := range requiredParameters[step.Type] {
		if _, ok := step.Parameters[key]; !ok {
			errs = append(errs, fmt.Errorf("%w '%s'", errors.ErrMissingParameter, key))
		}
	}

	return errs
}
