package format

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyHandlerName is returned by [Registry.Register] for a handler
	// whose name normalizes to "".
	ErrEmptyHandlerName = errors.New("handler name must not be empty")

	// ErrDuplicateHandler is returned by [Registry.Register] when a handler
	// with the same normalized name is already registered.
	ErrDuplicateHandler = errors.New("duplicate handler")
)

// Handler is a conversion capability. The route engine only reads a
// handler's advertised formats; it never converts data itself.
type Handler interface {
	// Name identifies the handler. It is normalized with [NewHandlerName].
	Name() string

	// Init prepares the handler, e.g. loading a codec. A handler whose Init
	// fails is treated as advertising no formats.
	Init(ctx context.Context) error

	// Formats lists the supported formats in order of preference. It is
	// only consulted after a successful Init.
	Formats() []Descriptor
}

// StaticHandler is a [Handler] with a fixed format list, typically loaded
// from configuration.
type StaticHandler struct {
	HandlerName string
	Supported   []Descriptor
}

// NewStaticHandler creates a handler named name advertising formats.
func NewStaticHandler(name string, formats ...Descriptor) *StaticHandler {
	return &StaticHandler{HandlerName: name, Supported: formats}
}

// Name returns the handler name.
func (h *StaticHandler) Name() string { return h.HandlerName }

// Init does nothing; static handlers are always ready.
func (h *StaticHandler) Init(context.Context) error { return nil }

// Formats returns the configured formats.
func (h *StaticHandler) Formats() []Descriptor { return h.Supported }

// Registry holds handlers in registration order. The order is significant:
// a handler's position is its registration ordinal in the cost model.
//
// Registry is not safe for concurrent use.
type Registry struct {
	handlers []Handler
	names    map[HandlerName]struct{}
}

// NewRegistry creates a registry with the given handlers registered in
// order. It fails on the first invalid or duplicate handler.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{names: make(map[HandlerName]struct{})}
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends h to the registry.
func (r *Registry) Register(h Handler) error {
	name := NewHandlerName(h.Name())
	if name.IsZero() {
		return ErrEmptyHandlerName
	}
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	r.names[name] = struct{}{}
	r.handlers = append(r.handlers, h)
	return nil
}

// Handlers returns the registered handlers in registration order.
func (r *Registry) Handlers() []Handler { return slices.Clone(r.handlers) }

// Len returns the number of registered handlers.
func (r *Registry) Len() int { return len(r.handlers) }

// maxConcurrentInit bounds how many handlers Collect initializes at once.
const maxConcurrentInit = 8

// Collect initializes every handler and returns the formats each one
// advertises, keyed by handler name, together with the handlers in
// registration order.
//
// Handlers are initialized concurrently, so Init implementations must not
// depend on each other. A handler whose Init fails is logged and mapped to
// an empty format list. Collect only returns an error when ctx is done.
func (r *Registry) Collect(ctx context.Context, logger *log.Logger) (map[HandlerName][]Descriptor, []Handler, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	lists := make([][]Descriptor, len(r.handlers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentInit)
	for i, h := range r.handlers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := NewHandlerName(h.Name())
			if err := h.Init(gctx); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("handler init failed", "handler", name, "err", err)
				return nil
			}
			list := make([]Descriptor, 0, len(h.Formats()))
			for _, d := range h.Formats() {
				list = append(list, d.Clone())
			}
			lists[i] = list
			logger.Debug("handler ready", "handler", name, "formats", len(list))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	formats := make(map[HandlerName][]Descriptor, len(r.handlers))
	for i, h := range r.handlers {
		formats[NewHandlerName(h.Name())] = lists[i]
	}
	return formats, r.Handlers(), nil
}
