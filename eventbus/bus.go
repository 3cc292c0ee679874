// Package eventbus is the in-process pub/sub backing subscription fields.
// It rides on gocloud.dev's pubsub with in-memory topics; resolvers publish
// domain events and subscription streams range over them.
package eventbus

import (
	"context"
	"sync"
	"time"

	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"
)

const ackDeadline = 5 * time.Second

// Bus is a set of named in-memory topics. The zero value is not usable;
// call New.
type Bus struct {
	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func New() *Bus {
	return &Bus{topics: make(map[string]*pubsub.Topic)}
}

func (b *Bus) topic(name string) *pubsub.Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.topics[name]
	if !ok {
		t = mempubsub.NewTopic()
		b.topics[name] = t
	}
	return t
}

// Publish sends body to every current subscriber of the named topic.
func (b *Bus) Publish(ctx context.Context, name string, body []byte) error {
	return b.topic(name).Send(ctx, &pubsub.Message{Body: body})
}

// Subscribe returns a channel of message bodies for the named topic. The
// channel closes when ctx is done. Messages published before the first
// Subscribe call are not replayed.
func (b *Bus) Subscribe(ctx context.Context, name string) chan interface{} {
	sub := mempubsub.NewSubscription(b.topic(name), ackDeadline)
	ch := make(chan interface{})

	go func() {
		defer close(ch)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = sub.Shutdown(shutdownCtx)
		}()

		for {
			msg, err := sub.Receive(ctx)
			if err != nil {
				// ctx cancelled or subscription shut down
				return
			}
			msg.Ack()
			select {
			case ch <- msg.Body:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// Shutdown tears down every topic. Pending Receives fail afterwards.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	for _, t := range b.topics {
		if err := t.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.topics = make(map[string]*pubsub.Topic)
	return firstErr
}
