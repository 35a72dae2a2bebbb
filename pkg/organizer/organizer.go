package organizer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrGuardNotFound is returned when a descriptor names a guard the instance does not have
var ErrGuardNotFound = errors.New("guard not found")

var log = zap.NewNop().Sugar()

// SetLogger sets the logger used for step progress. A nil logger disables logging.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	log = l
}

// Organizer is a composite instance: a definition bound to its named guards
type Organizer[C any] struct {
	definition *Definition[C]
	guards     Guards[C]
}

// Name returns the name of the underlying definition
func (o *Organizer[C]) Name() string {
	return o.definition.name
}

// Call runs every declared step against c in order. A step is skipped when its
// guard returns false. The first step or guard error is returned as is and no
// later step runs.
func (o *Organizer[C]) Call(ctx context.Context, c C) error {
	organized := o.definition.organized
	for i, desc := range organized {
		if desc.If != "" {
			ok, err := o.guard(desc.If, c)
			if err != nil {
				return err
			}
			if !ok {
				log.Debugw("skipping step",
					"organizer", o.definition.name,
					"index", i,
					"step", stepName(desc.Step),
					"guard", desc.If)
				continue
			}
		}

		log.Debugw("running step",
			"organizer", o.definition.name,
			"index", i,
			"total", len(organized),
			"step", stepName(desc.Step))

		if err := desc.Step.Call(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (o *Organizer[C]) guard(name string, c C) (bool, error) {
	g, ok := o.guards[name]
	if !ok || g == nil {
		return false, fmt.Errorf("%w: %q on %s", ErrGuardNotFound, name, o.definition.name)
	}
	return g(c)
}
