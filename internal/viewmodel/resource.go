package viewmodel

// Resource is the observable state of one asynchronous fetch. Result keeps
// the last successful value while a later fetch is loading or has failed.
type Resource[T any] struct {
	IsLoading bool
	IsError   bool
	Error     string
	Result    T
}

// Loading marks a fetch as in flight.
func (r Resource[T]) Loading() Resource[T] {
	r.IsLoading = true
	r.IsError = false
	r.Error = ""
	return r
}

// Succeeded settles the resource with a fresh result.
func (r Resource[T]) Succeeded(result T) Resource[T] {
	r.IsLoading = false
	r.IsError = false
	r.Error = ""
	r.Result = result
	return r
}

// Failed settles the resource with err, leaving Result untouched.
func (r Resource[T]) Failed(err error) Resource[T] {
	r.IsLoading = false
	r.IsError = true
	r.Error = ""
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// WithResult replaces Result without touching the loading or error flags.
func (r Resource[T]) WithResult(result T) Resource[T] {
	r.Result = result
	return r
}
