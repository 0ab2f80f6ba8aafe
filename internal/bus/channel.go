// Package bus provides event bus implementations for the evaluation
// pipeline.
package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// requestTimeout bounds Request when the caller's context has no deadline.
const requestTimeout = 30 * time.Second

// ChannelBus is the Community tier event bus: in-process, channel backed,
// one delivery goroutine per subscriber. Messages to a subscriber whose
// buffer is full are dropped and counted.
type ChannelBus struct {
	mu      sync.RWMutex
	buffer  int
	subs    map[string]map[string]*channelSub
	closed  bool
	dropped atomic.Int64
}

type channelSub struct {
	bus    *ChannelBus
	id     string
	topic  string
	inbox  chan *domain.Message
	cancel context.CancelFunc
}

// NewChannelBus creates an in-process bus with the given per-subscriber
// buffer size.
func NewChannelBus(bufferSize int) *ChannelBus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &ChannelBus{
		buffer: bufferSize,
		subs:   make(map[string]map[string]*channelSub),
	}
}

// Publish delivers the payload to every subscriber of topic. Delivery is
// best effort; a subscriber that cannot keep up loses messages rather than
// blocking the publisher.
func (b *ChannelBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("bus is closed")
	}
	targets := make([]*channelSub, 0, len(b.subs[topic]))
	for _, sub := range b.subs[topic] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	msg := &domain.Message{
		ID:        uuid.New().String(),
		Topic:     topic,
		Payload:   payload,
		Metadata:  make(map[string]string),
		Timestamp: time.Now().UnixNano(),
	}

	for _, sub := range targets {
		select {
		case sub.inbox <- msg:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe registers handler for topic and starts its delivery goroutine.
func (b *ChannelBus) Subscribe(ctx context.Context, topic string, handler domain.MessageHandler) (domain.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("bus is closed")
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub := &channelSub{
		bus:    b,
		id:     uuid.New().String(),
		topic:  topic,
		inbox:  make(chan *domain.Message, b.buffer),
		cancel: cancel,
	}

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]*channelSub)
	}
	b.subs[topic][sub.id] = sub

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-sub.inbox:
				if !ok {
					return
				}
				_ = handler(runCtx, msg)
			}
		}
	}()

	return sub, nil
}

// Request publishes payload and waits for one reply on a private reply
// topic. Used by tooling; the pipeline itself only publishes.
func (b *ChannelBus) Request(ctx context.Context, topic string, payload []byte) ([]byte, error) {
	replyTopic := topic + ".reply." + uuid.New().String()
	replyCh := make(chan []byte, 1)

	sub, err := b.Subscribe(ctx, replyTopic, func(_ context.Context, msg *domain.Message) error {
		select {
		case replyCh <- msg.Payload:
		default:
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	if err := b.Publish(ctx, topic, payload); err != nil {
		return nil, err
	}

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(requestTimeout):
		return nil, fmt.Errorf("request timeout")
	}
}

// Dropped reports how many messages were discarded because a subscriber
// buffer was full.
func (b *ChannelBus) Dropped() int64 {
	return b.dropped.Load()
}

// Ping reports whether the bus accepts messages.
func (b *ChannelBus) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("bus is closed")
	}
	return nil
}

// Close stops all subscribers and rejects further use.
func (b *ChannelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, topicSubs := range b.subs {
		for _, sub := range topicSubs {
			sub.cancel()
		}
	}
	b.subs = make(map[string]map[string]*channelSub)
	return nil
}

// Unsubscribe stops delivery and detaches the subscriber from the bus.
func (s *channelSub) Unsubscribe() error {
	s.cancel()
	s.bus.mu.Lock()
	if topicSubs := s.bus.subs[s.topic]; topicSubs != nil {
		delete(topicSubs, s.id)
	}
	s.bus.mu.Unlock()
	return nil
}

// Topic returns the subscribed topic.
func (s *channelSub) Topic() string {
	return s.topic
}
