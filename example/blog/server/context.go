// Package server is the blog example's context module. Because this file
// lives at the conventional server/context.go path, nexus uses it instead of
// synthesizing a default scaffold.
package server

import (
	"context"
	"net/http"

	"github.com/SpaceK33z/nexus"
	"github.com/SpaceK33z/nexus/eventbus"
)

var (
	store = NewStore()

	// Events carries post events from mutations to subscriptions.
	Events = eventbus.New()
)

func init() {
	nexus.RegisterContextFunc(NewContext)
}

// NewContext builds the per-request context handed to resolvers.
func NewContext(r *http.Request) context.Context {
	return nexus.WithClient(r.Context(), store)
}

// FromContext returns the request's store.
func FromContext(ctx context.Context) *Store {
	s, _ := nexus.Client(ctx).(*Store)
	return s
}
