package schemabuilder

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/iancoleman/strcase"
	"github.com/vektah/gqlparser/v2/ast"
)

// builtinScalars maps SDL built-ins onto the engine's scalar singletons.
var builtinScalars = map[string]graphql.Type{
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"String":  graphql.String,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

// converter walks a validated SDL AST and produces the corresponding
// graphql-go types, binding registered resolvers as it goes. Object and
// input fields are built through thunks so mutually recursive types work.
type converter struct {
	schema *Schema
	ast    *ast.Schema
	types  map[string]graphql.Type
}

func newConverter(s *Schema, astSchema *ast.Schema) *converter {
	return &converter{schema: s, ast: astSchema, types: make(map[string]graphql.Type)}
}

func (c *converter) buildSchema() (graphql.Schema, error) {
	names := make([]string, 0, len(c.ast.Types))
	for name := range c.ast.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		if _, builtin := builtinScalars[name]; builtin {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Unions reference their member objects eagerly, so they go last.
	for _, name := range names {
		if c.ast.Types[name].Kind != ast.Union {
			c.types[name] = c.convert(c.ast.Types[name])
		}
	}
	for _, name := range names {
		if c.ast.Types[name].Kind == ast.Union {
			c.types[name] = c.convert(c.ast.Types[name])
		}
	}

	cfg := graphql.SchemaConfig{}
	if c.ast.Query != nil {
		cfg.Query, _ = c.types[c.ast.Query.Name].(*graphql.Object)
	}
	if c.ast.Mutation != nil {
		cfg.Mutation, _ = c.types[c.ast.Mutation.Name].(*graphql.Object)
	}
	if c.ast.Subscription != nil {
		cfg.Subscription, _ = c.types[c.ast.Subscription.Name].(*graphql.Object)
	}
	for _, name := range names {
		cfg.Types = append(cfg.Types, c.types[name])
	}

	return graphql.NewSchema(cfg)
}

func (c *converter) convert(def *ast.Definition) graphql.Type {
	switch def.Kind {
	case ast.Object:
		return c.convertObject(def)
	case ast.Interface:
		return c.convertInterface(def)
	case ast.Union:
		return c.convertUnion(def)
	case ast.Enum:
		return c.convertEnum(def)
	case ast.InputObject:
		return c.convertInput(def)
	case ast.Scalar:
		return c.convertScalar(def)
	default:
		panic(fmt.Sprintf("schemabuilder: unsupported definition kind %s for %s", def.Kind, def.Name))
	}
}

func (c *converter) convertObject(def *ast.Definition) graphql.Type {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{}
			for _, f := range def.Fields {
				if strings.HasPrefix(f.Name, "__") {
					continue
				}
				fields[f.Name] = c.convertField(def.Name, f)
			}
			return fields
		}),
		Interfaces: graphql.InterfacesThunk(func() []*graphql.Interface {
			var ifaces []*graphql.Interface
			for _, name := range def.Interfaces {
				if iface, ok := c.types[name].(*graphql.Interface); ok {
					ifaces = append(ifaces, iface)
				}
			}
			return ifaces
		}),
	})
}

func (c *converter) convertField(typeName string, f *ast.FieldDefinition) *graphql.Field {
	field := &graphql.Field{
		Name:              f.Name,
		Description:       f.Description,
		Type:              c.outputRef(f.Type),
		Args:              c.convertArgs(f.Arguments),
		DeprecationReason: deprecationReason(f.Directives),
	}

	if handle, ok := c.schema.objects[typeName]; ok {
		if fn, ok := handle.resolvers[f.Name]; ok {
			field.Resolve = wrapResolver(fn)
		}
		if fn, ok := handle.subscribers[f.Name]; ok {
			field.Subscribe = wrapSubscriber(fn)
			if field.Resolve == nil {
				// Subscription payloads flow through as the field value.
				field.Resolve = passthroughResolve
			}
		}
	}
	if field.Resolve == nil {
		field.Resolve = defaultResolve
	}

	return field
}

func (c *converter) convertArgs(args ast.ArgumentDefinitionList) graphql.FieldConfigArgument {
	if len(args) == 0 {
		return nil
	}
	out := graphql.FieldConfigArgument{}
	for _, a := range args {
		cfg := &graphql.ArgumentConfig{
			Type:        c.inputRef(a.Type),
			Description: a.Description,
		}
		if a.DefaultValue != nil {
			if v, err := a.DefaultValue.Value(nil); err == nil {
				cfg.DefaultValue = v
			}
		}
		out[a.Name] = cfg
	}
	return out
}

func (c *converter) convertInterface(def *ast.Definition) graphql.Type {
	return graphql.NewInterface(graphql.InterfaceConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{}
			for _, f := range def.Fields {
				fields[f.Name] = &graphql.Field{
					Name:        f.Name,
					Description: f.Description,
					Type:        c.outputRef(f.Type),
					Args:        c.convertArgs(f.Arguments),
				}
			}
			return fields
		}),
		ResolveType: c.resolveConcreteType,
	})
}

func (c *converter) convertUnion(def *ast.Definition) graphql.Type {
	var members []*graphql.Object
	for _, name := range def.Types {
		if obj, ok := c.types[name].(*graphql.Object); ok {
			members = append(members, obj)
		}
	}
	return graphql.NewUnion(graphql.UnionConfig{
		Name:        def.Name,
		Description: def.Description,
		Types:       members,
		ResolveType: c.resolveConcreteType,
	})
}

func (c *converter) convertEnum(def *ast.Definition) graphql.Type {
	values := graphql.EnumValueConfigMap{}
	for _, ev := range def.EnumValues {
		values[ev.Name] = &graphql.EnumValueConfig{
			Value:             ev.Name,
			Description:       ev.Description,
			DeprecationReason: deprecationReason(ev.Directives),
		}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        def.Name,
		Description: def.Description,
		Values:      values,
	})
}

func (c *converter) convertInput(def *ast.Definition) graphql.Type {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, f := range def.Fields {
				cfg := &graphql.InputObjectFieldConfig{
					Type:        c.inputRef(f.Type),
					Description: f.Description,
				}
				if f.DefaultValue != nil {
					if v, err := f.DefaultValue.Value(nil); err == nil {
						cfg.DefaultValue = v
					}
				}
				fields[f.Name] = cfg
			}
			return fields
		}),
	})
}

func (c *converter) convertScalar(def *ast.Definition) graphql.Type {
	sc, ok := c.schema.scalars[def.Name]
	if !ok {
		sc = Passthrough()
	}
	desc := def.Description
	if desc == "" {
		desc = sc.Description
	}
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:         def.Name,
		Description:  desc,
		Serialize:    sc.Serialize,
		ParseValue:   sc.ParseValue,
		ParseLiteral: literalParser(sc.ParseValue),
	})
}

// resolveConcreteType picks the concrete object for an interface or union
// value: by the Go type's name first, then by an explicit __typename key.
func (c *converter) resolveConcreteType(p graphql.ResolveTypeParams) *graphql.Object {
	if m, ok := p.Value.(map[string]interface{}); ok {
		if name, ok := m["__typename"].(string); ok {
			if obj, ok := c.types[name].(*graphql.Object); ok {
				return obj
			}
		}
		return nil
	}

	t := reflect.TypeOf(p.Value)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return nil
	}
	if obj, ok := c.types[t.Name()].(*graphql.Object); ok {
		return obj
	}
	return nil
}

func (c *converter) outputRef(t *ast.Type) graphql.Output {
	return c.typeRef(t)
}

func (c *converter) inputRef(t *ast.Type) graphql.Input {
	return c.typeRef(t)
}

func (c *converter) typeRef(t *ast.Type) graphql.Type {
	var base graphql.Type
	if t.NamedType != "" {
		base = c.namedType(t.NamedType)
	} else {
		base = graphql.NewList(c.typeRef(t.Elem))
	}
	if t.NonNull {
		base = graphql.NewNonNull(base)
	}
	return base
}

func (c *converter) namedType(name string) graphql.Type {
	if t, ok := builtinScalars[name]; ok {
		return t
	}
	if t, ok := c.types[name]; ok {
		return t
	}
	// Unreachable for validated SDL; gqlparser rejects unknown names.
	panic(fmt.Sprintf("schemabuilder: reference to unknown type %s", name))
}

func deprecationReason(directives ast.DirectiveList) string {
	d := directives.ForName("deprecated")
	if d == nil {
		return ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}

func wrapResolver(fn ResolveFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return fn(p.Context, p.Source, p.Args)
	}
}

func wrapSubscriber(fn SubscribeFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		ch, err := fn(p.Context, p.Args)
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}

func passthroughResolve(p graphql.ResolveParams) (interface{}, error) {
	return p.Source, nil
}

// defaultResolve reads the field straight off the source value: map lookup,
// then exported struct field (json tag or lowerCamel name match), then a
// niladic method.
func defaultResolve(p graphql.ResolveParams) (interface{}, error) {
	return fieldValue(p.Source, p.Info.FieldName)
}

func fieldValue(source interface{}, name string) (interface{}, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]interface{}); ok {
		return m[name], nil
	}

	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Struct {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			if tagName(f) == name || strcase.ToLowerCamel(f.Name) == name {
				return v.Field(i).Interface(), nil
			}
		}
	}

	if m := reflect.ValueOf(source).MethodByName(strcase.ToCamel(name)); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 0 && mt.NumOut() == 1 {
			return m.Call(nil)[0].Interface(), nil
		}
	}

	return nil, nil
}

func tagName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return ""
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
