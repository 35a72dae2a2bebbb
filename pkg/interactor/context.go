// Package interactor provides the base command used as a step in an organizer:
// a shared key/value Context with success and failure state, and an Interactor
// that records what ran so it can be rolled back when a later step fails.
package interactor

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Context is the mutable state threaded through every interactor of one run
type Context struct {
	data       map[string]any
	failed     bool
	err        error
	called     []*Interactor
	rolledBack bool
}

// NewContext creates a context seeded with a copy of data
func NewContext(data map[string]any) *Context {
	c := &Context{data: make(map[string]any, len(data))}
	for k, v := range data {
		c.data[k] = v
	}
	return c
}

// Get returns the value stored under key
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.data[key]
	return v, ok
}

// GetString returns the value stored under key if it is a non-empty string
func (c *Context) GetString(key string) string {
	s, _ := c.data[key].(string)
	return s
}

// Set stores value under key
func (c *Context) Set(key string, value any) {
	c.data[key] = value
}

// Merge stores every entry of fields
func (c *Context) Merge(fields map[string]any) {
	for k, v := range fields {
		c.data[k] = v
	}
}

// Data returns a copy of the stored values
func (c *Context) Data() map[string]any {
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// Success reports whether the context has not been failed
func (c *Context) Success() bool { return !c.failed }

// Failure reports whether the context has been failed
func (c *Context) Failure() bool { return c.failed }

// Err returns the error that failed the context, if any
func (c *Context) Err() error { return c.err }

// Fail merges fields, marks the context failed and returns the Failure an
// interactor should return to stop the run. Err keeps reporting the first failure.
func (c *Context) Fail(fields map[string]any) error {
	c.Merge(fields)
	f := &Failure{Context: c, Message: failureMessage(fields)}
	c.markFailed(f)
	return f
}

// FailWith marks the context failed with err and returns a Failure wrapping it
func (c *Context) FailWith(err error) error {
	f := &Failure{Context: c, Message: err.Error(), cause: err}
	c.markFailed(f)
	return f
}

// markFailed records err without replacing an earlier failure
func (c *Context) markFailed(err error) {
	if c.failed {
		return
	}
	c.failed = true
	c.err = err
}

func (c *Context) markCalled(i *Interactor) {
	c.called = append(c.called, i)
}

// Called returns the names of interactors that completed, in completion order
func (c *Context) Called() []string {
	names := make([]string, 0, len(c.called))
	for _, i := range c.called {
		names = append(names, i.name)
	}
	return names
}

// Rollback undoes every completed interactor in reverse order. Only the first
// call has any effect.
func (c *Context) Rollback(ctx context.Context) {
	if c.rolledBack {
		return
	}
	c.rolledBack = true
	for i := len(c.called) - 1; i >= 0; i-- {
		c.called[i].rollback(ctx, c)
	}
}

func failureMessage(fields map[string]any) string {
	if msg, ok := fields["error"].(string); ok && msg != "" {
		return msg
	}
	if len(fields) == 0 {
		return "context failed"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "context failed: " + strings.Join(parts, ", ")
}
