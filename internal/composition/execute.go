package composition

import (
	"context"

	"github.com/deploymenttheory/go-interactor/internal/logger"
	"github.com/deploymenttheory/go-interactor/pkg/interactor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ExecuteWorkflow compiles and runs the workflow. The returned context holds the
// variables as left by the last step that ran; it is returned on failure too.
func ExecuteWorkflow(ctx context.Context, workflow *Workflow) (*interactor.Context, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "workflow "+workflow.Name,
		trace.WithAttributes(
			attribute.String("workflow.name", workflow.Name),
			attribute.Int("workflow.steps", len(workflow.Steps)),
		))
	defer span.End()

	logger.LogInfo("Starting workflow execution", map[string]interface{}{
		"workflow": workflow.Name,
		"steps":    len(workflow.Steps),
	})

	seed := systemVariables()
	for k, v := range workflow.Variables {
		seed[k] = v
	}
	c := interactor.NewContext(seed)

	composite, err := Compile(workflow)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return c, err
	}

	root := interactor.New(workflow.Name, composite.Call)
	if err := root.Call(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.LogError("Workflow execution failed", err, map[string]interface{}{
			"workflow": workflow.Name,
			"called":   c.Called(),
		})
		return c, err
	}

	logger.LogInfo("Workflow execution completed successfully", map[string]interface{}{
		"workflow": workflow.Name,
		"called":   c.Called(),
	})

	return c, nil
}
