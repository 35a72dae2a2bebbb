package interactor

import (
	"context"
	"errors"
)

// Func is the body of an interactor
type Func func(ctx context.Context, c *Context) error

// Hook runs before or after the body
type Hook func(ctx context.Context, c *Context) error

// AroundHook wraps the before hooks, the body and the after hooks. It must call
// next to continue; the context passed to next is the one the body receives.
type AroundHook func(ctx context.Context, c *Context, next func(context.Context) error) error

// Interactor is a named unit of business logic with optional hooks and rollback
type Interactor struct {
	name   string
	fn     Func
	before []Hook
	after  []Hook
	around []AroundHook
	undo   func(ctx context.Context, c *Context)
}

// Option configures an Interactor
type Option func(*Interactor)

// WithBefore adds a hook that runs before the body, in declaration order
func WithBefore(h Hook) Option {
	return func(i *Interactor) { i.before = append(i.before, h) }
}

// WithAfter adds a hook that runs after the body. After hooks run in reverse
// declaration order.
func WithAfter(h Hook) Option {
	return func(i *Interactor) { i.after = append([]Hook{h}, i.after...) }
}

// WithAround adds a hook wrapping the whole invocation. The first one declared
// is the outermost.
func WithAround(h AroundHook) Option {
	return func(i *Interactor) { i.around = append(i.around, h) }
}

// WithRollback sets the undo action run when a later interactor fails
func WithRollback(fn func(ctx context.Context, c *Context)) Option {
	return func(i *Interactor) { i.undo = fn }
}

// New creates an interactor
func New(name string, fn Func, opts ...Option) *Interactor {
	i := &Interactor{name: name, fn: fn}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name returns the interactor name
func (i *Interactor) Name() string {
	return i.name
}

// Call runs the interactor against c. On success it is recorded on the context
// for rollback. On failure the context is marked failed, every interactor that
// already completed on it is rolled back, and the error is returned unchanged.
func (i *Interactor) Call(ctx context.Context, c *Context) error {
	if err := i.withHooks(ctx, c); err != nil {
		c.markFailed(err)
		c.Rollback(ctx)
		return err
	}
	c.markCalled(i)
	return nil
}

func (i *Interactor) withHooks(ctx context.Context, c *Context) error {
	run := func(ctx context.Context) error {
		for _, h := range i.before {
			if err := h(ctx, c); err != nil {
				return err
			}
		}
		if i.fn != nil {
			if err := i.fn(ctx, c); err != nil {
				return err
			}
		}
		for _, h := range i.after {
			if err := h(ctx, c); err != nil {
				return err
			}
		}
		return nil
	}

	for n := len(i.around) - 1; n >= 0; n-- {
		h, next := i.around[n], run
		run = func(ctx context.Context) error { return h(ctx, c, next) }
	}
	return run(ctx)
}

func (i *Interactor) rollback(ctx context.Context, c *Context) {
	if i.undo != nil {
		i.undo(ctx, c)
	}
}

// Perform builds a context from data and runs i against it. A Failure is not
// returned as an error; callers check Context.Failure instead. Any other error
// is returned alongside the context.
func Perform(ctx context.Context, i *Interactor, data map[string]any) (*Context, error) {
	c := NewContext(data)
	err := i.Call(ctx, c)
	var f *Failure
	if errors.As(err, &f) {
		return c, nil
	}
	return c, err
}
