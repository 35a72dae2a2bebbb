package organizer

import "context"

// Definition is the declaration registry of one composite type. Declare everything
// with Organize before the first Call; after that the definition is read-only and
// may be shared by any number of concurrent instances.
type Definition[C any] struct {
	name      string
	organized []Descriptor[C]
}

// Define creates an empty definition for the named composite type
func Define[C any](name string) *Definition[C] {
	return &Definition[C]{name: name}
}

// Name returns the composite type name given to Define
func (d *Definition[C]) Name() string {
	return d.name
}

// Organize appends steps in the order given. A Descriptor is kept as declared,
// a Steps list contributes each of its elements, and any other Step is appended
// without a guard. Repeated calls accumulate.
func (d *Definition[C]) Organize(steps ...Step[C]) *Definition[C] {
	for _, step := range steps {
		switch s := step.(type) {
		case Descriptor[C]:
			d.organized = append(d.organized, s)
		case Steps[C]:
			for _, inner := range s {
				d.organized = append(d.organized, normalize(inner))
			}
		default:
			d.organized = append(d.organized, Descriptor[C]{Step: step})
		}
	}
	return d
}

// Organized returns a copy of the declared descriptors in execution order.
// It is never nil.
func (d *Definition[C]) Organized() []Descriptor[C] {
	out := make([]Descriptor[C], len(d.organized))
	copy(out, d.organized)
	return out
}

// New returns a composite instance that resolves named guards against guards
func (d *Definition[C]) New(guards Guards[C]) *Organizer[C] {
	return &Organizer[C]{definition: d, guards: guards}
}

// Call runs the definition with no named guards
func (d *Definition[C]) Call(ctx context.Context, c C) error {
	return d.New(nil).Call(ctx, c)
}

func normalize[C any](step Step[C]) Descriptor[C] {
	if desc, ok := step.(Descriptor[C]); ok {
		return desc
	}
	return Descriptor[C]{Step: step}
}
