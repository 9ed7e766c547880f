package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_TopicAndWildcard(t *testing.T) {
	b := NewBus()
	var stats, all []string

	b.Subscribe("post.stats", func(_ context.Context, evt Event) { stats = append(stats, evt.Key) })
	b.Subscribe("*", func(_ context.Context, evt Event) { all = append(all, evt.Topic) })

	b.Publish(context.Background(), "post.stats", "p1", nil)
	b.Publish(context.Background(), "post.deleted", "p2", nil)

	assert.Equal(t, []string{"p1"}, stats)
	assert.Equal(t, []string{"post.stats", "post.deleted"}, all)
}

func TestBus_UnsubscribeAndPanic(t *testing.T) {
	b := NewBus()
	calls := 0
	id := b.Subscribe("post.stats", func(context.Context, Event) { calls++ })
	b.Subscribe("post.stats", func(context.Context, Event) { panic("boom") })

	assert.NotPanics(t, func() { b.Publish(context.Background(), "post.stats", "p1", nil) })
	b.Unsubscribe(id)
	b.Publish(context.Background(), "post.stats", "p1", nil)

	assert.Equal(t, 1, calls)
}

func TestBus_NilSafe(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.Publish(context.Background(), "x", "k", nil) })
}
