// Package schemabuilder builds executable GraphQL schemas from SDL sources
// and registered resolver functions.
//
// A Schema is an explicit builder: schema modules register their SDL sources
// and resolvers against it, and Build produces a graphql-go schema. The
// builder itself holds no process-global state; construct one, hand it to
// every registration call, then build it once.
package schemabuilder

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Source is a named unit of SDL, typically one discovered schema file.
type Source struct {
	Name     string
	Contents string
}

// ResolveFunc computes the value of a single field.
type ResolveFunc func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error)

// SubscribeFunc opens the event stream backing a subscription field. Each
// value sent on the returned channel becomes the source for one execution of
// the field's resolver. The channel must be closed when ctx is done.
type SubscribeFunc func(ctx context.Context, args map[string]interface{}) (chan interface{}, error)

// Schema is the accumulating builder handed to schema-module registrations.
type Schema struct {
	sources []Source
	objects map[string]*Object
	scalars map[string]Scalar
}

// NewSchema creates an empty builder. The DateTime scalar is pre-registered;
// SDL sources that use it still need to declare `scalar DateTime`.
func NewSchema() *Schema {
	return &Schema{
		objects: make(map[string]*Object),
		scalars: map[string]Scalar{"DateTime": DateTime()},
	}
}

// AddSource registers one SDL source under a name used in parse errors.
func (s *Schema) AddSource(name, contents string) {
	s.sources = append(s.sources, Source{Name: name, Contents: contents})
}

// Sources returns the registered SDL sources in registration order.
func (s *Schema) Sources() []Source {
	out := make([]Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Query returns the registration handle for the root query type.
func (s *Schema) Query() *Object { return s.Object("Query") }

// Mutation returns the registration handle for the root mutation type.
func (s *Schema) Mutation() *Object { return s.Object("Mutation") }

// Subscription returns the registration handle for the root subscription type.
func (s *Schema) Subscription() *Object { return s.Object("Subscription") }

// Object returns the registration handle for the named object type, creating
// it if needed. The type itself must be declared by an SDL source; the handle
// only binds behavior to it.
func (s *Schema) Object(name string) *Object {
	if o, ok := s.objects[name]; ok {
		return o
	}
	o := &Object{name: name, resolvers: make(map[string]ResolveFunc), subscribers: make(map[string]SubscribeFunc)}
	s.objects[name] = o
	return o
}

// RegisterScalar registers (or replaces) a custom scalar implementation.
// SDL scalars without a registered implementation pass values through
// untouched.
func (s *Schema) RegisterScalar(name string, sc Scalar) {
	s.scalars[name] = sc
}

// AST parses and validates the merged SDL sources.
func (s *Schema) AST() (*ast.Schema, error) {
	srcs := make([]*ast.Source, 0, len(s.sources))
	for _, src := range s.sources {
		srcs = append(srcs, &ast.Source{Name: src.Name, Input: src.Contents})
	}
	schema, err := gqlparser.LoadSchema(srcs...)
	if err != nil {
		return nil, fmt.Errorf("schemabuilder: %w", err)
	}
	return schema, nil
}

// Build converts the accumulated sources and resolvers into an executable
// schema. With no sources registered the engine's own "missing query type"
// error is returned.
func (s *Schema) Build() (graphql.Schema, error) {
	if len(s.sources) == 0 {
		return graphql.NewSchema(graphql.SchemaConfig{})
	}

	astSchema, err := s.AST()
	if err != nil {
		return graphql.Schema{}, err
	}

	return newConverter(s, astSchema).buildSchema()
}

// MustBuild builds the schema and panics on failure.
func (s *Schema) MustBuild() graphql.Schema {
	built, err := s.Build()
	if err != nil {
		panic(err)
	}
	return built
}

// Object is the registration handle for one named type.
type Object struct {
	name        string
	resolvers   map[string]ResolveFunc
	subscribers map[string]SubscribeFunc
}

// FieldFunc binds a resolver to a field of this type. Registering the same
// field twice panics.
func (o *Object) FieldFunc(name string, fn ResolveFunc) {
	if _, ok := o.resolvers[name]; ok {
		panic(fmt.Sprintf("schemabuilder: duplicate resolver %s.%s", o.name, name))
	}
	o.resolvers[name] = fn
}

// SubscribeFunc binds an event stream to a subscription field. Registering
// the same field twice panics.
func (o *Object) SubscribeFunc(name string, fn SubscribeFunc) {
	if _, ok := o.subscribers[name]; ok {
		panic(fmt.Sprintf("schemabuilder: duplicate subscriber %s.%s", o.name, name))
	}
	o.subscribers[name] = fn
}
