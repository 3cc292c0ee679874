package schemabuilder

import (
	"strconv"
	"time"

	gast "github.com/graphql-go/graphql/language/ast"
)

// Scalar implements a custom SDL scalar. Serialize turns an internal value
// into its wire form; ParseValue turns client input into the internal form.
// Literals in query documents are decoded to plain Go values and then fed
// through ParseValue.
type Scalar struct {
	Description string
	Serialize   func(value interface{}) interface{}
	ParseValue  func(value interface{}) interface{}
}

// DateTime is an RFC 3339 timestamp mapped onto time.Time.
func DateTime() Scalar {
	return Scalar{
		Description: "An RFC 3339 formatted timestamp.",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(time.RFC3339)
			case *time.Time:
				if v == nil {
					return nil
				}
				return v.Format(time.RFC3339)
			case string:
				return v
			default:
				return nil
			}
		},
		ParseValue: func(value interface{}) interface{} {
			s, ok := value.(string)
			if !ok {
				return nil
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil
			}
			return t
		},
	}
}

// Passthrough leaves values untouched in both directions. It backs SDL
// scalars with no registered implementation.
func Passthrough() Scalar {
	identity := func(value interface{}) interface{} { return value }
	return Scalar{Serialize: identity, ParseValue: identity}
}

// literalParser adapts a ParseValue function to the engine's literal hook by
// first decoding the document AST into plain Go values.
func literalParser(parse func(interface{}) interface{}) func(gast.Value) interface{} {
	return func(valueAST gast.Value) interface{} {
		return parse(decodeLiteral(valueAST))
	}
}

func decodeLiteral(valueAST gast.Value) interface{} {
	switch v := valueAST.(type) {
	case *gast.StringValue:
		return v.Value
	case *gast.BooleanValue:
		return v.Value
	case *gast.IntValue:
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil
		}
		return n
	case *gast.FloatValue:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil
		}
		return f
	case *gast.EnumValue:
		return v.Value
	case *gast.ListValue:
		out := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			out = append(out, decodeLiteral(item))
		}
		return out
	case *gast.ObjectValue:
		out := make(map[string]interface{}, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name.Value] = decodeLiteral(f.Value)
		}
		return out
	default:
		return nil
	}
}
