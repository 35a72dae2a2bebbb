package cmd

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-interactor/internal/common/jsonutil"
	"github.com/deploymenttheory/go-interactor/internal/composition"
	"github.com/deploymenttheory/go-interactor/internal/logger"
	"github.com/deploymenttheory/go-interactor/pkg/interactor"
	"github.com/spf13/cobra"
)

var (
	workflowFile string
	reportFile   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate and execute a workflow file",
	RunE: func(cmd *cobra.Command, args []string) error {
		workflow, err := loadValidWorkflow(workflowFile)
		if err != nil {
			return err
		}

		c, err := composition.ExecuteWorkflow(cmd.Context(), workflow)
		if reportFile != "" {
			if writeErr := writeReport(reportFile, workflow, c, err); writeErr != nil {
				logger.LogError("Failed to write run report", writeErr, map[string]interface{}{
					"file": reportFile,
				})
			}
		}
		if err != nil {
			return fmt.Errorf("workflow %s failed after %v: %w", workflow.Name, c.Called(), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "workflow %s completed: %s\n", workflow.Name, strings.Join(c.Called(), " -> "))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a workflow file without running it",
	RunE: func(cmd *cobra.Command, args []string) error {
		workflow, err := loadValidWorkflow(workflowFile)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "workflow %s is valid (%d steps)\n", workflow.Name, len(workflow.Steps))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVarP(&workflowFile, "workflow", "w", "", "workflow file")
		_ = c.MarkFlagRequired("workflow")
	}
	runCmd.Flags().StringVarP(&reportFile, "output", "o", "", "write a JSON report of the run to this file")
}

// writeReport records the outcome and final context of a run
func writeReport(file string, workflow *composition.Workflow, c *interactor.Context, runErr error) error {
	report := map[string]interface{}{
		"workflow":  workflow.Name,
		"success":   runErr == nil,
		"called":    c.Called(),
		"variables": c.Data(),
	}
	if runErr != nil {
		report["error"] = runErr.Error()
	}
	return jsonutil.WriteJSONFile(file, report)
}

// loadValidWorkflow loads the workflow and logs every validation error
func loadValidWorkflow(file string) (*composition.Workflow, error) {
	logger.LogInfo("Loading workflow", map[string]interface{}{
		"file": file,
	})

	workflow, err := composition.LoadWorkflow(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	errs := composition.ValidateWorkflow(workflow)
	for _, err := range errs {
		logger.LogError("Workflow validation error", err, nil)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("workflow validation failed with %d errors: %w", len(errs), errs[0])
	}

	return workflow, nil
}
