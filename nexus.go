// Package nexus is a convention-driven bootstrapper for GraphQL services.
//
// An application is assembled from conventional paths in the project
// directory: SDL schema modules under schema/ (or a single schema.graphql),
// an optional user context module at server/context.go, and a cache
// directory at .nexus/ for synthesized scaffolding and generated artifacts.
// Code-first registrations are contributed through RegisterModule and run
// against an explicit schema builder during New.
package nexus

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/SpaceK33z/nexus/eventbus"
	"github.com/SpaceK33z/nexus/schemabuilder"
)

// ContextFunc builds the per-request context handed to every resolver. It is
// invoked once per incoming request.
type ContextFunc func(r *http.Request) context.Context

// Module is one code-first schema module: a named registration callable
// invoked against the app's schema builder during New.
type Module struct {
	Name     string
	Register func(*schemabuilder.Schema) error
}

var (
	manifestMu     sync.Mutex
	pendingModules []Module
	pendingFn      ContextFunc
)

// RegisterModule adds a schema module to the manifest consumed by New.
// Typically called from an init function of a user package imported for its
// side effects.
func RegisterModule(name string, register func(*schemabuilder.Schema) error) {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	pendingModules = append(pendingModules, Module{Name: name, Register: register})
}

// RegisterContextFunc records the per-request context factory. The last
// registration wins; user and synthesized context modules both call this
// from init.
func RegisterContextFunc(fn ContextFunc) {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	pendingFn = fn
}

func manifest() ([]Module, ContextFunc) {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	mods := make([]Module, len(pendingModules))
	copy(mods, pendingModules)
	return mods, pendingFn
}

// App is an assembled application. Create one with New, then call
// StartServer (or mount Handler yourself).
type App struct {
	dir    string
	logger *log.Logger

	builder *schemabuilder.Schema
	bus     *eventbus.Bus

	contextModule      string
	contextSynthesized bool
	contextFn          ContextFunc
}

// Option configures New.
type Option func(*App)

// WithDir sets the project directory holding the conventional paths.
// Defaults to the working directory.
func WithDir(dir string) Option {
	return func(a *App) { a.dir = dir }
}

// WithLogger replaces the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// New assembles an application: schema modules are loaded into a fresh
// builder (disk-discovered SDL first, then the code-first manifest), and the
// context module is resolved, synthesizing the default scaffold when the
// user has not supplied one.
func New(opts ...Option) (*App, error) {
	a := &App{
		dir:    ".",
		logger: log.Default(),
		bus:    eventbus.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	builder := schemabuilder.NewSchema()
	if err := a.loadSchemaModules(builder); err != nil {
		return nil, err
	}
	if err := a.resolveContext(); err != nil {
		return nil, err
	}
	a.builder = builder

	_, fn := manifest()
	a.contextFn = fn

	return a, nil
}

// Schema exposes the app's schema builder for registrations made after New.
func (a *App) Schema() *schemabuilder.Schema { return a.builder }

// Bus is the app's event bus for subscription fields.
func (a *App) Bus() *eventbus.Bus { return a.bus }

// ContextModule reports the resolved context module path and whether it was
// synthesized into the cache directory.
func (a *App) ContextModule() (path string, synthesized bool) {
	return a.contextModule, a.contextSynthesized
}

// Handler builds the schema and returns the fully mounted HTTP handler:
// /graphql, /subscriptions, and the playground at / when enabled.
func (a *App) Handler(opts ServerOptions) (http.Handler, error) {
	o := opts.withDefaults()
	return a.handler(o)
}

func (a *App) handler(o ServerOptions) (http.Handler, error) {
	schema, err := a.builder.Build()
	if err != nil {
		return nil, err
	}

	contextFn := o.ContextFunc
	if contextFn == nil {
		contextFn = a.contextFn
	}

	gql := HTTPHandler(&schema,
		WithContextFunc(contextFn),
		WithIntrospection(*o.Introspection),
		WithHandlerLogger(a.logger),
	)

	mux := http.NewServeMux()
	mux.Handle("/graphql", gql)
	mux.Handle("/subscriptions", SubscriptionHandler(&schema, contextFn, a.logger))
	if *o.Playground {
		mux.Handle("/", PlaygroundHandler("GraphQL Playground", "/graphql"))
	}
	return mux, nil
}

// StartServer merges opts over the defaults, builds the schema, generates
// build artifacts when the environment asks for them, and listens on the
// configured port. Schema-build and listen failures are returned as is.
func (a *App) StartServer(opts ServerOptions) error {
	o := opts.withDefaults()

	settings := resolveArtifactSettings()
	if settings.generate {
		if err := a.GenerateArtifacts(); err != nil {
			return err
		}
		if settings.exitAfter {
			a.logger.Info("artifacts generated, exiting", "dir", generatedDir(a.dir))
			os.Exit(0)
		}
	}

	handler, err := a.handler(o)
	if err != nil {
		return err
	}

	a.logger.Info(o.StartMessage(o.Port))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", o.Port),
		Handler: handler,
	}
	return srv.ListenAndServe()
}

// Context helpers carrying the data-access client, used by context modules
// and resolvers.

type clientKeyType int

const clientKey clientKeyType = 0

// WithClient stores the data-access client on the context.
func WithClient(ctx context.Context, client interface{}) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

// Client returns the data-access client stored by WithClient, or nil.
func Client(ctx context.Context) interface{} {
	return ctx.Value(clientKey)
}
