// Package organizer runs an ordered list of steps against one shared context.
//
// A Definition is declared once per composite type and read by every instance:
//
//	var placeOrder = organizer.Define[*Order]("place_order").
//		Organize(fetchCart, organizer.If(applyCoupon, "has_coupon"), charge)
//
// Each Organizer built from it walks the declared steps in order, skips a step whose
// guard evaluates false, and stops at the first step that returns an error.
package organizer

import (
	"context"
	"fmt"
)

// Step is a single unit of work that mutates the shared context
type Step[C any] interface {
	Call(ctx context.Context, c C) error
}

// StepFunc adapts a plain function to the Step interface
type StepFunc[C any] func(ctx context.Context, c C) error

// Call invokes f
func (f StepFunc[C]) Call(ctx context.Context, c C) error {
	return f(ctx, c)
}

// Namer is implemented by steps that want a readable name in logs
type Namer interface {
	Name() string
}

// Guard decides whether a step runs. It sees the context as left by the previous step.
type Guard[C any] func(c C) (bool, error)

// Guards maps guard names to the predicates a composite instance exposes
type Guards[C any] map[string]Guard[C]

// Descriptor is one declared entry: a step plus the optional name of its guard
type Descriptor[C any] struct {
	Step Step[C]

	// If names a guard on the instance; empty means always run
	If string
}

// If declares step guarded by the named predicate
func If[C any](step Step[C], guard string) Descriptor[C] {
	return Descriptor[C]{Step: step, If: guard}
}

// Call runs the underlying step unconditionally. Guards only apply inside an Organizer.
func (d Descriptor[C]) Call(ctx context.Context, c C) error {
	return d.Step.Call(ctx, c)
}

// Steps groups several steps in one declaration item. Organize flattens it one level.
type Steps[C any] []Step[C]

// Call runs each step in order and stops at the first error
func (s Steps[C]) Call(ctx context.Context, c C) error {
	for _, step := range s {
		if err := step.Call(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func stepName(s any) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
