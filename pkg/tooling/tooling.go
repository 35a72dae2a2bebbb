// Package tooling is the programmatic entry point for running workflows from
// other Go programs. It mirrors what the CLI does.
package tooling

import (
	"context"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-interactor/internal/composition"
	"github.com/deploymenttheory/go-interactor/internal/config"
	"github.com/deploymenttheory/go-interactor/internal/logger"
	"github.com/deploymenttheory/go-interactor/pkg/organizer"
)

// InitOptions contains options for initializing the tooling API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
}

// WorkflowResult contains the results of a workflow execution
type WorkflowResult struct {
	Success      bool                   // Whether the workflow completed successfully
	ErrorMessage string                 // Error message if any
	Called       []string               // Steps that completed, in order
	Variables    map[string]interface{} // Final context after the run
}

var initialized bool

// Initialize initializes the tooling API with the given options
func Initialize(options InitOptions) error {
	if initialized {
		return nil
	}

	configErr := config.Initialize(options.ConfigFile)

	// Update config with provided options
	if options.Debug {
		config.Instance.Debug = true
	}
	if options.LogFormat != "" {
		config.Instance.LogFormat = options.LogFormat
	}
	if options.LogFile != "" {
		config.Instance.LogFile = options.LogFile
	}

	if !options.SuppressLog {
		logConfig := logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}
		if err := logger.InitLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		organizer.SetLogger(logger.Logger.Named("organizer"))

		logger.LogInfo("Tooling API initialized", map[string]interface{}{
			"config_file": options.ConfigFile,
			"debug":       config.Instance.Debug,
		})
		if configErr != nil {
			logger.LogWarn("Configuration initialization warning", map[string]interface{}{
				"error": configErr.Error(),
			})
		}
	}

	initialized = true
	return nil
}

// DefaultOptions returns the default initialization options
func DefaultOptions() InitOptions {
	return InitOptions{
		LogFormat: "human",
	}
}

func ensureInitialized() error {
	if initialized {
		return nil
	}
	if err := Initialize(DefaultOptions()); err != nil {
		return fmt.Errorf("failed to initialize tooling API: %w", err)
	}
	return nil
}

// ExecuteWorkflow executes a workflow defined in a file
func ExecuteWorkflow(ctx context.Context, workflowFile string) (*WorkflowResult, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	logger.LogInfo("Executing workflow", map[string]interface{}{
		"file": workflowFile,
	})

	workflow, err := composition.LoadWorkflow(workflowFile)
	if err != nil {
		return &WorkflowResult{
			ErrorMessage: fmt.Sprintf("Failed to load workflow: %s", err.Error()),
		}, err
	}

	return run(ctx, workflow)
}

// ExecuteWorkflowFromYAML executes a workflow defined in a YAML string
func ExecuteWorkflowFromYAML(ctx context.Context, workflowYAML string) (*WorkflowResult, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	workflow, err := composition.ParseWorkflow([]byte(workflowYAML), "yaml")
	if err != nil {
		return &WorkflowResult{
			ErrorMessage: fmt.Sprintf("Failed to parse workflow: %s", err.Error()),
		}, err
	}

	return run(ctx, workflow)
}

func run(ctx context.Context, workflow *composition.Workflow) (*WorkflowResult, error) {
	if errs := composition.ValidateWorkflow(workflow); len(errs) > 0 {
		var errorMessages []string
		for _, err := range errs {
			errorMessages = append(errorMessages, err.Error())
		}

		errorMessage := fmt.Sprintf("Workflow validation failed with %d errors: %s",
			len(errs), strings.Join(errorMessages, "; "))

		return &WorkflowResult{ErrorMessage: errorMessage}, fmt.Errorf("%w: %s", errs[0], errorMessage)
	}

	c, err := composition.ExecuteWorkflow(ctx, workflow)
	result := &WorkflowResult{
		Success:   err == nil,
		Called:    c.Called(),
		Variables: c.Data(),
	}
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("Workflow execution failed: %s", err.Error())
	}

	return result, err
}

// GetVersion returns the current version of the tooling API
func GetVersion() string {
	return "0.1.0"
}

// Shutdown flushes buffered logs before the host application exits
func Shutdown() error {
	if initialized {
		logger.LogInfo("Tooling API shutting down", nil)
		_ = logger.Sync()
	}
	return nil
}
