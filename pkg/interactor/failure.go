package interactor

// Failure is returned when an interactor fails its context on purpose
type Failure struct {
	Context *Context
	Message string
	cause   error
}

func (f *Failure) Error() string {
	return f.Message
}

// Unwrap returns the error passed to FailWith, if any
func (f *Failure) Unwrap() error {
	return f.cause
}
