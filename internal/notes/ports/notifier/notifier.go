// Package notifier определяет канал уведомлений об изменении коллекций.
package notifier

import (
	"context"
	"time"
)

// Topic имя коллекции, об изменении которой сообщается.
type Topic string

const (
	TopicNotes        Topic = "notes"
	TopicAllowedUsers Topic = "allowed_users"
)

// Event уведомление о том, что содержимое коллекции изменилось.
// OperationID указывает операцию, которая вызвала изменение, если она известна.
type Event struct {
	Topic       Topic     `json:"topic"`
	OperationID string    `json:"operation_id,omitempty"`
	At          time.Time `json:"at"`
}

// Feed живая подписка на уведомления одной коллекции.
type Feed interface {
	// Events закрывается после Close или разрыва соединения.
	Events() <-chan Event
	// Close идемпотентен.
	Close() error
}

// ChangeNotifier публикует и доставляет уведомления об изменениях.
type ChangeNotifier interface {
	Publish(ctx context.Context, topic Topic) error
	Subscribe(ctx context.Context, topic Topic) (Feed, error)
}
