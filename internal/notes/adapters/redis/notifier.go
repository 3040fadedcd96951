// Package redis реализует уведомления об изменениях коллекций через Redis Pub/Sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notedesk/internal/notes/ports/notifier"
	"notedesk/pkg/logger"
	"notedesk/pkg/resilience"
)

// DefaultChannelPrefix префикс каналов Pub/Sub.
const DefaultChannelPrefix = "notedesk:changes:"

const (
	ErrMarshalEvent = "failed to marshal change event"
	ErrPublish      = "failed to publish change event"
	ErrSubscribe    = "failed to subscribe to change events"
	ErrCloseFeed    = "failed to close change feed"

	LogPublished       = "change event published"
	LogSubscribed      = "subscribed to change events"
	LogDecodeFailed    = "dropping undecodable change event"
	feedBufferCapacity = 16
)

// Notifier реализует notifier.ChangeNotifier.
type Notifier struct {
	client  *redis.Client
	prefix  string
	now     func() time.Time
	breaker *resilience.Breaker
}

var _ notifier.ChangeNotifier = (*Notifier)(nil)

// Option настраивает Notifier.
type Option func(*Notifier)

// WithBreaker задает настройки размыкателя публикации.
func WithBreaker(cfg resilience.BreakerConfig) Option {
	return func(n *Notifier) {
		n.breaker = resilience.NewBreaker("redis_publish", cfg)
	}
}

// NewNotifier создает Notifier. Пустой prefix заменяется DefaultChannelPrefix.
// Пока Redis недоступен, Publish после серии ошибок сразу возвращает resilience.ErrBreakerOpen.
func NewNotifier(client *redis.Client, prefix string, opts ...Option) *Notifier {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	n := &Notifier{client: client, prefix: prefix, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	if n.breaker == nil {
		n.breaker = resilience.NewBreaker("redis_publish", resilience.DefaultBreakerConfig())
	}
	return n
}

func (n *Notifier) channel(topic notifier.Topic) string {
	return n.prefix + string(topic)
}

// Publish сообщает подписчикам topic, что коллекция изменилась.
func (n *Notifier) Publish(ctx context.Context, topic notifier.Topic) error {
	log := logger.Log(ctx).With(zap.String("method", "Notifier.Publish"), zap.String("topic", string(topic)))

	ev := notifier.Event{Topic: topic, At: n.now().UTC()}
	if id, ok := logger.OperationID(ctx); ok {
		ev.OperationID = id
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMarshalEvent, err)
	}

	err = n.breaker.Execute(ctx, func(ctx context.Context) error {
		return n.client.Publish(ctx, n.channel(topic), payload).Err()
	})
	if err != nil {
		log.Error(ctx, ErrPublish, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrPublish, err)
	}

	log.Debug(ctx, LogPublished)
	return nil
}

// Subscribe открывает подписку на topic. Подписка подтверждена сервером к моменту возврата,
// поэтому события, опубликованные после Subscribe, не теряются.
func (n *Notifier) Subscribe(ctx context.Context, topic notifier.Topic) (notifier.Feed, error) {
	log := logger.Log(ctx).With(zap.String("method", "Notifier.Subscribe"), zap.String("topic", string(topic)))

	ps := n.client.Subscribe(ctx, n.channel(topic))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		log.Error(ctx, ErrSubscribe, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrSubscribe, err)
	}

	f := &feed{
		ps:     ps,
		events: make(chan notifier.Event, feedBufferCapacity),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go f.run(context.WithoutCancel(ctx))

	log.Debug(ctx, LogSubscribed)
	return f, nil
}

type feed struct {
	ps     *redis.PubSub
	events chan notifier.Event
	stop   chan struct{}
	done   chan struct{}

	once     sync.Once
	closeErr error
}

func (f *feed) run(ctx context.Context) {
	defer close(f.done)
	defer close(f.events)

	msgs := f.ps.Channel()
	for {
		select {
		case <-f.stop:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev notifier.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Log(ctx).Warn(ctx, LogDecodeFailed, zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case f.events <- ev:
			case <-f.stop:
				return
			}
		}
	}
}

func (f *feed) Events() <-chan notifier.Event {
	return f.events
}

func (f *feed) Close() error {
	f.once.Do(func() {
		close(f.stop)
		if err := f.ps.Close(); err != nil {
			f.closeErr = fmt.Errorf("%s: %w", ErrCloseFeed, err)
		}
		<-f.done
	})
	return f.closeErr
}
