package logger

import (
	"context"

	"github.com/google/uuid"
)

type operationKey struct{}

// NewOperationContext помечает ctx идентификатором операции. Пустой id заменяется новым.
// Идентификатор попадает в каждую запись логгера, сделанную с этим ctx,
// и в уведомление об изменении, которое вызвала операция.
func NewOperationContext(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, operationKey{}, id)
}

// OperationID возвращает идентификатор операции из ctx.
func OperationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(operationKey{}).(string)
	return id, ok && id != ""
}
