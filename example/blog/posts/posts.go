// Package posts is the blog example's code-first schema module: it binds
// resolvers to the types declared by schema/post.graphql.
package posts

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/SpaceK33z/nexus"
	"github.com/SpaceK33z/nexus/example/blog/server"
	"github.com/SpaceK33z/nexus/schemabuilder"
)

const topic = "posts"

func init() {
	nexus.RegisterModule("posts", Register)
}

// Register binds the blog's resolvers to the schema builder.
func Register(sb *schemabuilder.Schema) error {
	q := sb.Query()

	q.FieldFunc("post", func(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
		id, _ := args["id"].(string)
		return server.FromContext(ctx).Post(id), nil
	})

	q.FieldFunc("posts", func(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
		return server.FromContext(ctx).Posts(), nil
	})

	m := sb.Mutation()

	m.FieldFunc("addPost", func(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
		input, _ := args["input"].(map[string]interface{})
		title, _ := input["title"].(string)
		if title == "" {
			return nil, errors.New("title must not be empty")
		}
		body, _ := input["body"].(string)

		p := server.FromContext(ctx).Add(title, body)

		event, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		if err := server.Events.Publish(ctx, topic, event); err != nil {
			return nil, err
		}
		return p, nil
	})

	sub := sb.Subscription()

	sub.SubscribeFunc("postAdded", func(ctx context.Context, args map[string]interface{}) (chan interface{}, error) {
		events := server.Events.Subscribe(ctx, topic)
		out := make(chan interface{})
		go func() {
			defer close(out)
			for body := range events {
				raw, ok := body.([]byte)
				if !ok {
					continue
				}
				var p server.Post
				if err := json.Unmarshal(raw, &p); err != nil {
					continue
				}
				select {
				case out <- &p:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out, nil
	})

	return nil
}
