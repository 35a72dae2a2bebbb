package composition

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/logger"
	"github.com/deploymenttheory/go-interactor/pkg/interactor"
	"github.com/deploymenttheory/go-interactor/pkg/organizer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/deploymenttheory/go-interactor/internal/composition"

// conditionGuardPrefix names the guards compiled from inline step conditions
const conditionGuardPrefix = "condition:"

// Compile turns a workflow into a composite instance. Every step becomes an
// interactor wrapping its handler, and every guard a template predicate
// evaluated against the live context.
func Compile(workflow *Workflow) (*organizer.Organizer[*interactor.Context], error) {
	def := organizer.Define[*interactor.Context](workflow.Name)
	guards := organizer.Guards[*interactor.Context]{}

	for name, condition := range workflow.Guards {
		guards[strings.ToLower(name)] = conditionGuard(condition)
	}

	for _, step := range workflow.Steps {
		handler, ok := stepHandlers[step.Type]
		if !ok {
			return nil, fmt.Errorf("step '%s': %w '%s'", step.Name, errors.ErrUnknownStepType, step.Type)
		}

		i := newStepInteractor(step, handler)

		switch {
		case step.Condition != "":
			name := conditionGuardPrefix + step.Name
			guards[name] = conditionGuard(step.Condition)
			def.Organize(organizer.If[*interactor.Context](i, name))
		case step.If != "":
			def.Organize(organizer.If[*interactor.Context](i, strings.ToLower(step.If)))
		default:
			def.Organize(i)
		}
	}

	return def.New(guards), nil
}

func conditionGuard(condition string) organizer.Guard[*interactor.Context] {
	return func(c *interactor.Context) (bool, error) {
		return evaluateCondition(condition, c.Data())
	}
}

// newStepInteractor wraps a handler so its parameters are rendered against the
// context right before it runs and its outputs are merged back afterwards.
// Rollback undoes the parameters the step ran with, not a fresh rendering.
func newStepInteractor(step Step, handler StepHandler) *interactor.Interactor {
	// *interactor.Context -> Step as rendered for that run
	var applied sync.Map

	run := func(ctx context.Context, c *interactor.Context) error {
		rendered, err := processParameters(step, c.Data())
		if err != nil {
			return err
		}

		outputs, err := handler(ctx, rendered, c)
		if err != nil {
			return err
		}
		applied.Store(c, rendered)
		c.Merge(outputs)
		return nil
	}

	opts := []interactor.Option{interactor.WithAround(traceStep(step))}
	if undo, ok := rollbackHandlers[step.Type]; ok {
		opts = append(opts, interactor.WithRollback(func(ctx context.Context, c *interactor.Context) {
			used, ok := applied.LoadAndDelete(c)
			if !ok {
				return
			}
			if err := undo(ctx, used.(Step)); err != nil {
				logger.LogError("Rollback failed", err, map[string]interface{}{"step": step.Name})
				return
			}
			logger.LogInfo("Rolled back step", map[string]interface{}{"step": step.Name, "type": step.Type})
		}))
	}

	return interactor.New(step.Name, run, opts...)
}

// traceStep opens a span around one step and logs its progress
func traceStep(step Step) interactor.AroundHook {
	return func(ctx context.Context, c *interactor.Context, next func(context.Context) error) error {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "step "+step.Name,
			trace.WithAttributes(
				attribute.String("step.name", step.Name),
				attribute.String("step.type", step.Type),
			))
		defer span.End()

		log := logger.WithFields(map[string]interface{}{
			"step": step.Name,
			"type": step.Type,
		})
		log.Infow(fmt.Sprintf("Executing step: %s", step.Name), "description", step.Description)

		if err := next(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		log.Infow(fmt.Sprintf("Completed step: %s", step.Name))
		return nil
	}
}
