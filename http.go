package nexus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	gast "github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is one GraphQL request as read off the wire.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// HandlerFunc executes a GraphQL request.
type HandlerFunc func(ctx context.Context, req *Request) *graphql.Result

// MiddlewareFunc wraps a HandlerFunc, e.g. for auth or tracing.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// HandlerOption configures HTTPHandler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	middlewares   []MiddlewareFunc
	contextFn     ContextFunc
	introspection bool
	logger        *log.Logger
}

// WithMiddlewares appends middlewares to the execution chain.
func WithMiddlewares(mws ...MiddlewareFunc) HandlerOption {
	return func(o *handlerOptions) { o.middlewares = append(o.middlewares, mws...) }
}

// WithContextFunc sets the per-request context factory.
func WithContextFunc(fn ContextFunc) HandlerOption {
	return func(o *handlerOptions) { o.contextFn = fn }
}

// WithIntrospection toggles introspection queries. Defaults to enabled.
func WithIntrospection(enabled bool) HandlerOption {
	return func(o *handlerOptions) { o.introspection = enabled }
}

// WithHandlerLogger sets the logger used for request debug logging.
func WithHandlerLogger(logger *log.Logger) HandlerOption {
	return func(o *handlerOptions) { o.logger = logger }
}

// HTTPHandler implements the handler required for executing graphql queries
// and mutations.
func HTTPHandler(schema *graphql.Schema, opts ...HandlerOption) http.Handler {
	o := handlerOptions{introspection: true, logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	h := &httpHandler{schema: schema, opts: o}

	prev := h.execute
	for i := range o.middlewares {
		prev = o.middlewares[len(o.middlewares)-1-i](prev)
	}
	h.exec = prev

	return h
}

type httpHandler struct {
	schema *graphql.Schema
	opts   handlerOptions
	exec   HandlerFunc
}

type httpResponse struct {
	Data   interface{}                `json:"data"`
	Errors []gqlerrors.FormattedError `json:"errors"`
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeResponse := func(value interface{}, errs []gqlerrors.FormattedError) {
		response := httpResponse{Data: value, Errors: errs}

		responseJSON, err := json.Marshal(response)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = w.Write(responseJSON)
	}

	writeErr := func(err error) {
		writeResponse(nil, []gqlerrors.FormattedError{gqlerrors.FormatError(err)})
	}

	if r.Method != http.MethodPost {
		writeErr(errors.New("request must be a POST"))
		return
	}

	if r.Body == nil {
		writeErr(errors.New("request must include a query"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(err)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeErr(errors.New("request must include a query"))
		return
	}

	if !h.opts.introspection {
		if err := rejectIntrospection(req.Query); err != nil {
			writeErr(err)
			return
		}
	}

	ctx := r.Context()
	if h.opts.contextFn != nil {
		ctx = h.opts.contextFn(r)
	}
	ctx = addVariables(ctx, req.Variables)

	requestID := uuid.NewString()
	h.opts.logger.Debug("graphql request", "id", requestID, "operation", req.OperationName)

	result := h.exec(ctx, &req)
	writeResponse(result.Data, result.Errors)
}

func (h *httpHandler) execute(ctx context.Context, req *Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         *h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// rejectIntrospection parses the request document and fails if any selection
// set asks for __schema or __type.
func rejectIntrospection(query string) error {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(query), Name: "GraphQL request"}),
	})
	if err != nil {
		// Leave parse errors to the executor.
		return nil
	}

	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *gast.OperationDefinition:
			if err := findIntrospection(d.SelectionSet); err != nil {
				return err
			}
		case *gast.FragmentDefinition:
			if err := findIntrospection(d.SelectionSet); err != nil {
				return err
			}
		}
	}
	return nil
}

func findIntrospection(set *gast.SelectionSet) error {
	if set == nil {
		return nil
	}
	for _, sel := range set.Selections {
		switch s := sel.(type) {
		case *gast.Field:
			if s.Name != nil && (s.Name.Value == "__schema" || s.Name.Value == "__type") {
				return errors.New("introspection is disabled")
			}
			if err := findIntrospection(s.SelectionSet); err != nil {
				return err
			}
		case *gast.InlineFragment:
			if err := findIntrospection(s.SelectionSet); err != nil {
				return err
			}
		}
	}
	return nil
}

type graphqlVariableKeyType int

const graphqlVariableKey graphqlVariableKeyType = 0

// ExtractVariables returns the variables received as part of the graphql
// request. This is intended to be used from within middlewares.
func ExtractVariables(ctx context.Context) map[string]interface{} {
	if v := ctx.Value(graphqlVariableKey); v != nil {
		return v.(map[string]interface{})
	}

	return nil
}

func addVariables(ctx context.Context, v map[string]interface{}) context.Context {
	return context.WithValue(ctx, graphqlVariableKey, v)
}

// playgroundHTML is a simple HTML page that loads GraphiQL from CDN to
// provide an interactive GraphQL playground.
const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>%s</title>
    <style>
        body {
            height: 100%%;
            margin: 0;
            overflow: hidden;
        }
        #graphiql {
            height: 100vh;
        }
    </style>
    <link rel="stylesheet" href="https://unpkg.com/graphiql@1.4.0/graphiql.min.css" />
    <script src="https://unpkg.com/react@16.14.0/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@16.14.0/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql@1.4.0/graphiql.min.js"></script>
</head>
<body>
    <div id="graphiql">Loading...</div>
    <script>
      function graphQLFetcher(graphQLParams) {
        return fetch(
          '%s',
          {
            method: 'post',
            headers: {
              Accept: 'application/json',
              'Content-Type': 'application/json',
            },
            body: JSON.stringify(graphQLParams),
            credentials: 'omit',
          },
        ).then(function (response) {
          return response.json().catch(function () {
            return response.text();
          });
        });
      }

      ReactDOM.render(
        React.createElement(GraphiQL, {
          fetcher: graphQLFetcher,
        }),
        document.getElementById('graphiql'),
      );
    </script>
</body>
</html>`

// PlaygroundHandler returns an HTTP handler that serves an interactive
// GraphiQL playground pointed at graphqlEndpoint, typically "/graphql".
func PlaygroundHandler(title, graphqlEndpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = fmt.Fprintf(w, playgroundHTML, title, graphqlEndpoint)
	})
}
