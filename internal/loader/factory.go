package loader

import (
	"context"
	"fmt"
)

// Deferred is a computation whose value becomes available later.
type Deferred interface {
	Await(ctx context.Context) (any, error)
}

// Factory is implemented by sources that resolve a module on demand.
type Factory interface {
	Resolve(ctx context.Context) (any, error)
}

// Rejection wraps a failure reason that is not an error value, such as a
// string passed to Rejected or a recovered panic value.
type Rejection struct {
	Reason any
}

func (r *Rejection) Error() string {
	return fmt.Sprint(r.Reason)
}

// reasonError turns an arbitrary failure reason into an error, keeping error
// values as they are.
func reasonError(reason any) error {
	if err, ok := reason.(error); ok {
		return err
	}
	return &Rejection{Reason: reason}
}

type deferred struct {
	done  chan struct{}
	value any
	err   error
}

func (d *deferred) Await(ctx context.Context) (any, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func settled(value any, err error) *deferred {
	d := &deferred{done: make(chan struct{}), value: value, err: err}
	close(d.done)
	return d
}

// Go runs fn on its own goroutine. A panic inside fn rejects the Deferred.
func Go(fn func() (any, error)) Deferred {
	d := &deferred{done: make(chan struct{})}
	go func() {
		defer close(d.done)
		defer func() {
			if r := recover(); r != nil {
				d.value, d.err = nil, reasonError(r)
			}
		}()
		d.value, d.err = fn()
	}()
	return d
}

// Resolved returns a Deferred that is already fulfilled with v.
func Resolved(v any) Deferred {
	return settled(v, nil)
}

// Rejected returns a Deferred that is already rejected. reason may be an
// error or any other value.
func Rejected(reason any) Deferred {
	return settled(nil, reasonError(reason))
}

type resolveFunc func(context.Context) (any, error)

// invocable normalizes the supported factory shapes. It returns nil for
// anything that cannot be called, including nil functions.
func invocable(factory any) resolveFunc {
	switch f := factory.(type) {
	case func(context.Context) (any, error):
		if f != nil {
			return f
		}
	case func() (any, error):
		if f != nil {
			return func(context.Context) (any, error) { return f() }
		}
	case func() any:
		if f != nil {
			return func(context.Context) (any, error) { return f(), nil }
		}
	case func() Deferred:
		if f != nil {
			return func(ctx context.Context) (any, error) {
				d := f()
				if d == nil {
					return nil, nil
				}
				return d.Await(ctx)
			}
		}
	case Factory:
		return f.Resolve
	}
	return nil
}

// resolve invokes fn once and converts a panic into an error.
func resolve(ctx context.Context, fn resolveFunc) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, reasonError(r)
		}
	}()
	return fn(ctx)
}
