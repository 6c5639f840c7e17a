package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var (
	// ErrUnknownHandler is returned when a manifest names an unregistered
	// handler.
	ErrUnknownHandler = errors.New("unknown handler")
	// ErrUnknownFailure is returned when a manifest expects an unregistered
	// failure kind.
	ErrUnknownFailure = errors.New("unknown failure kind")
	// ErrInvalidArguments is returned when arguments do not match a handler's
	// declaration.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Handler runs the body of a unit, or one of its hooks, with its decoded
// arguments.
type Handler func(ctx context.Context, args Arguments) error

// RegisteredHandler holds a compiled handler and the arguments it accepts.
type RegisteredHandler struct {
	Fn Handler
	// Arguments declares every accepted argument and its type. Required
	// arguments must be present.
	Arguments map[string]Argument
}

// Argument declares one handler argument.
type Argument struct {
	Type     cty.Type
	Required bool
}

// Registry holds all the registered handlers and failure kinds for a single
// application instance.
type Registry struct {
	handlers map[string]*RegisteredHandler
	failures map[string]error
}

// New creates a registry that knows the built-in failure kinds, then
// registers every module.
func New(modules ...Module) *Registry {
	r := &Registry{
		handlers: make(map[string]*RegisteredHandler),
		failures: make(map[string]error),
	}
	r.RegisterFailure("assertion", suite.ErrAssertion)
	r.RegisterFailure("any", suite.ErrAny)
	r.RegisterFailure("timeout", context.DeadlineExceeded)
	r.RegisterFailure("canceled", context.Canceled)

	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterHandler registers a Go function under the name manifests use.
func (r *Registry) RegisterHandler(name string, handler *RegisteredHandler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering handler.", "name", name)
	r.handlers[name] = handler
}

// RegisterFailure registers an error that units may name as their expected
// failure.
func (r *Registry) RegisterFailure(name string, err error) {
	if _, exists := r.failures[name]; exists {
		panic(fmt.Sprintf("failure kind with name '%s' already registered", name))
	}
	r.failures[name] = err
}

// Handler looks up a registered handler.
func (r *Registry) Handler(name string) (*RegisteredHandler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownHandler, name, strings.Join(r.HandlerNames(), ", "))
	}
	return h, nil
}

// Failure looks up a registered failure kind.
func (r *Registry) Failure(name string) (error, error) {
	err, ok := r.failures[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFailure, name)
	}
	return err, nil
}

// HandlerNames returns the registered handler names, sorted.
func (r *Registry) HandlerNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Bind checks raw arguments against the handler's declaration, converts them
// to the declared types and returns a suite function that calls the handler.
func (r *Registry) Bind(name string, raw map[string]cty.Value) (suite.Func, error) {
	h, err := r.Handler(name)
	if err != nil {
		return nil, err
	}
	args, err := h.convert(raw)
	if err != nil {
		return nil, fmt.Errorf("handler %q: %w", name, err)
	}
	return func(ctx context.Context) error {
		return h.Fn(ctx, args)
	}, nil
}

func (h *RegisteredHandler) convert(raw map[string]cty.Value) (Arguments, error) {
	var errs []error
	args := make(Arguments, len(raw))

	for name, value := range raw {
		decl, ok := h.Arguments[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unexpected argument %q", ErrInvalidArguments, name))
			continue
		}
		converted, err := convert.Convert(value, decl.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: argument %q: %v", ErrInvalidArguments, name, err))
			continue
		}
		args[name] = converted
	}
	for name, decl := range h.Arguments {
		if _, ok := raw[name]; decl.Required && !ok {
			errs = append(errs, fmt.Errorf("%w: missing required argument %q", ErrInvalidArguments, name))
		}
	}
	return args, errors.Join(errs...)
}
