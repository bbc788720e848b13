package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/databases"
)

func TestMemoryNotifier(t *testing.T) {
	ctx := context.Background()
	n := databases.NewMemoryNotifier()

	a, cancelA, err := n.Subscribe(ctx, "debate:111111")
	require.NoError(t, err)
	b, cancelB, err := n.Subscribe(ctx, "debate:222222")
	require.NoError(t, err)
	defer cancelB()

	require.NoError(t, n.Publish(ctx, "debate:111111", []byte("one")))

	assert.Equal(t, "one", string(<-a))
	assert.Len(t, b, 0)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)

	// publishing to a channel without subscribers is fine
	assert.NoError(t, n.Publish(ctx, "debate:111111", []byte("two")))
}

func TestMemoryNotifierDropsWhenSubscriberLags(t *testing.T) {
	ctx := context.Background()
	n := databases.NewMemoryNotifier()

	ch, cancel, err := n.Subscribe(ctx, "debate:111111")
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 100; i++ {
		require.NoError(t, n.Publish(ctx, "debate:111111", []byte("x")))
	}
	assert.Equal(t, 16, len(ch))
}
