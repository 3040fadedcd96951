package gateway

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"notedesk/internal/notes/ports/gateway"
	"notedesk/internal/notes/ports/notifier"
	"notedesk/pkg/logger"
)

// ErrFeedClosed сообщает, что канал уведомлений закрылся раньше отписки.
var ErrFeedClosed = errors.New("change feed closed unexpectedly")

const (
	LogSnapshotEmitted  = "snapshot emitted"
	LogSubscriptionEnds = "live query finished"
	LogQueryFailed      = "live query failed"
)

// liveQuery связывает запрос со снимком коллекции и поток уведомлений о ее изменении.
type liveQuery[T any] struct {
	name    string
	topic   notifier.Topic
	query   func(ctx context.Context) ([]T, error)
	onNext  func([]T)
	onError gateway.ErrorHandler
}

// start подписывается на уведомления до первого запроса, чтобы не пропустить изменение
// между снимком и подпиской. Горутина запроса учитывается в wg.
func (q liveQuery[T]) start(ctx context.Context, n notifier.ChangeNotifier, wg *sync.WaitGroup) (gateway.Unsubscribe, error) {
	feed, err := n.Subscribe(ctx, q.topic)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		q.run(ctx, feed.Events())
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = feed.Close()
		})
	}, nil
}

func (q liveQuery[T]) run(ctx context.Context, events <-chan notifier.Event) {
	log := logger.Log(ctx).With(zap.String("live_query", q.name))
	defer log.Debug(ctx, LogSubscriptionEnds)

	if !q.emit(ctx, log) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if ok {
				ev, ok = drain(events, ev)
			}
			if !ok {
				if ctx.Err() == nil {
					q.onError(ErrFeedClosed)
				}
				return
			}
			if !q.emit(causedBy(ctx, ev), log) {
				return
			}
		}
	}
}

// emit выполняет запрос и отдает снимок. false означает, что подписка завершена.
func (q liveQuery[T]) emit(ctx context.Context, log *logger.Logger) bool {
	items, err := q.query(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		log.Warn(ctx, LogQueryFailed, zap.Error(err))
		q.onError(err)
		return false
	}
	log.Debug(ctx, LogSnapshotEmitted, zap.Int("count", len(items)))
	q.onNext(items)
	return true
}

// drain схлопывает накопившиеся уведомления в один повторный запрос и
// возвращает последнее. false означает, что канал закрылся.
func drain(events <-chan notifier.Event, last notifier.Event) (notifier.Event, bool) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return last, false
			}
			last = ev
		default:
			return last, true
		}
	}
}

// causedBy переносит идентификатор операции из уведомления в ctx повторного запроса.
func causedBy(ctx context.Context, ev notifier.Event) context.Context {
	if ev.OperationID == "" {
		return ctx
	}
	return logger.NewOperationContext(ctx, ev.OperationID)
}
