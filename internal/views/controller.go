package views

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/metrics"
)

var (
	// ErrBusy is returned when an action starts while another is loading.
	ErrBusy = errors.New("views: action already in progress")
	// ErrDiscarded is returned when the view was unmounted while its action
	// was in flight. The late result is dropped.
	ErrDiscarded = errors.New("views: result discarded")
	// ErrNoResult is returned by Update when there is no result to change.
	ErrNoResult = errors.New("views: nothing to update")
	// ErrActionPanicked is recorded when an action panics.
	ErrActionPanicked = errors.New("views: action panicked")
)

type (
	generationKey struct{}
	guardKey      struct{}
)

// whileActive runs fn, which may be nil, only if the action owning ctx has
// not been discarded. fn runs under the controller's lock, so Unmount either
// happens before it and skips it or waits for it. It reports whether the
// action was still active. Outside an action fn always runs.
func whileActive(ctx context.Context, fn func()) bool {
	guard, ok := ctx.Value(guardKey{}).(func(func()) bool)
	if !ok {
		if fn != nil {
			fn()
		}
		return true
	}
	return guard(fn)
}

// Controller runs one kind of gateway action for a view and tracks its
// State. Actions are never retried.
type Controller[T any] struct {
	route   entities.Route
	deps    *Deps
	message func(error) string

	mu    sync.Mutex
	state State[T]
	gen   uint64
}

// NewController creates a new controller whose failures show the route's
// fallback message.
func NewController[T any](route entities.Route, deps *Deps) *Controller[T] {
	return &Controller[T]{
		route: route,
		deps:  deps,
		state: Idle[T](),
	}
}

// WithMessage overrides how errors are turned into the message shown.
func (c *Controller[T]) WithMessage(fn func(error) string) *Controller[T] {
	c.message = fn
	return c
}

// State returns the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether ctx belongs to an action whose result would still
// be applied.
func (c *Controller[T]) Active(ctx context.Context) bool {
	gen, ok := ctx.Value(generationKey{}).(uint64)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// Run executes action and records its outcome.
func (c *Controller[T]) Run(ctx context.Context, action func(ctx context.Context) (T, error)) (State[T], error) {
	return c.RunThen(ctx, action, nil)
}

// RunThen is Run with a commit hook that is called with the result while the
// controller is locked, so the view can apply side state atomically with the
// success transition. commit is not called for discarded results.
func (c *Controller[T]) RunThen(ctx context.Context, action func(ctx context.Context) (T, error), commit func(T)) (State[T], error) {
	c.mu.Lock()
	if c.state.Status == StatusLoading {
		c.mu.Unlock()
		metrics.ViewActions.WithLabelValues(string(c.route), "busy").Inc()
		return c.State(), ErrBusy
	}
	c.state = Loading[T]()
	gen := c.gen
	c.mu.Unlock()

	// Navigation does not cancel the call; the generation check drops it.
	ctx = context.WithValue(context.WithoutCancel(ctx), generationKey{}, gen)
	ctx = context.WithValue(ctx, guardKey{}, func(fn func()) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return false
		}
		if fn != nil {
			fn()
		}
		return true
	})

	v, err := c.call(ctx, action)
	if err != nil && errors.Is(err, repositories.ErrUnauthorized) {
		c.reselectCredentials(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		metrics.ViewActions.WithLabelValues(string(c.route), "discarded").Inc()
		c.deps.Logger.Debug("Discarding late result", zap.String("view", string(c.route)))
		return c.state, ErrDiscarded
	}

	if err != nil {
		c.state = Failure[T](c.messageFor(err))
		metrics.ViewActions.WithLabelValues(string(c.route), "error").Inc()
		c.deps.Logger.Warn("View action failed",
			zap.String("view", string(c.route)),
			zap.Error(err))
		return c.state, err
	}

	if commit != nil {
		commit(v)
	}
	c.state = Success(v)
	metrics.ViewActions.WithLabelValues(string(c.route), "success").Inc()
	return c.state, nil
}

// call runs action, turning a panic into ErrActionPanicked so the state
// cannot stay Loading.
func (c *Controller[T]) call(ctx context.Context, action func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.deps.Logger.Error("View action panicked",
				zap.String("view", string(c.route)),
				zap.Any("panic", r),
				zap.Stack("stack"))
			var zero T
			v, err = zero, ErrActionPanicked
		}
	}()
	return action(ctx)
}

// Update replaces a successful value in place.
func (c *Controller[T]) Update(fn func(T) (T, error)) (State[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != StatusSuccess {
		return c.state, ErrNoResult
	}
	v, err := fn(c.state.Value)
	if err != nil {
		return c.state, err
	}
	c.state = Success(v)
	return c.state, nil
}

// Unmount forgets the current state and invalidates in-flight actions.
func (c *Controller[T]) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Idle[T]()
}

func (c *Controller[T]) reselectCredentials(ctx context.Context) {
	creds := c.deps.Credentials
	if creds == nil {
		return
	}
	c.deps.Logger.Info("Gateway rejected credentials, selecting new ones", zap.String("view", string(c.route)))
	if err := creds.SelectCredentials(ctx); err != nil {
		c.deps.Logger.Warn("Credential selection failed", zap.Error(err))
	}
}

func (c *Controller[T]) messageFor(err error) string {
	if c.message != nil {
		if msg := c.message(err); msg != "" {
			return msg
		}
	}
	return c.deps.Catalog.Fallback(c.route)
}
