package databases

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// subscriberBuffer is how many unread notifications a subscriber may lag behind
// before new ones are dropped for it
const subscriberBuffer = 16

// Notifier fans out change notifications keyed by channel name
type Notifier interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of payloads and a cancel func that must be called
	// to release the subscription
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// MemoryNotifier is an in-process Notifier
type MemoryNotifier struct {
	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

// NewMemoryNotifier creates an in-process notifier
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[chan []byte]struct{})}
}

// Publish never blocks; a subscriber whose buffer is full misses the payload and
// catches up on its next poll.
func (n *MemoryNotifier) Publish(_ context.Context, channel string, payload []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (n *MemoryNotifier) Subscribe(_ context.Context, channel string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, subscriberBuffer)

	n.mu.Lock()
	if n.subs[channel] == nil {
		n.subs[channel] = make(map[chan []byte]struct{})
	}
	n.subs[channel][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[channel], ch)
			if len(n.subs[channel]) == 0 {
				delete(n.subs, channel)
			}
			n.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

// RedisNotifier publishes over redis pub/sub so every API instance sees room changes
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier on an existing redis connection
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, channel string, payload []byte) error {
	return n.client.Publish(ctx, storeKey(channel), payload).Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	pubsub := n.client.Subscribe(ctx, storeKey(channel))
	// wait for the subscription confirmation so no publish is missed after return
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				zap.S().Warnw("failed to close redis subscription", "channel", channel, "error", err)
			}
		})
	}
	return out, cancel, nil
}
