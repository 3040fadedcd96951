// Package subscription превращает живую подписку шлюза в локальное состояние:
// последний снимок, признак загрузки и ошибку.
//
// Hook владеет не более чем одной подпиской. Subscribe освобождает предыдущую
// и открывает новую; обратные вызовы устаревших подписок отбрасываются
// (побеждает последняя подписка).
package subscription

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/gateway"
	"notedesk/pkg/logger"
)

const (
	LogSubscribing       = "subscribing"
	LogNoViewer          = "no viewer, skipping live subscription"
	LogSubscribeFailed   = "subscription failed"
	LogSubscriptionError = "subscription reported an error"
	LogStaleDropped      = "dropping callback from superseded subscription"
)

// Scope параметры, от которых зависит набор данных подписки.
type Scope struct {
	ViewerEmail string
	Privileged  bool
}

// ScopeFor строит Scope для пользователя.
func ScopeFor(v entities.Viewer) Scope {
	return Scope{ViewerEmail: entities.NormalizeEmail(v.Email), Privileged: v.Privileged()}
}

// Authenticated сообщает, задан ли пользователь.
func (s Scope) Authenticated() bool {
	return entities.NormalizeEmail(s.ViewerEmail) != ""
}

// Source открывает подписку шлюза для scope.
type Source[T any] func(ctx context.Context, scope Scope, onNext func([]T), onError func(error)) (gateway.Unsubscribe, error)

// State снимок состояния хука.
type State[T any] struct {
	Items   []T
	Loading bool
	Err     error
	Scope   Scope
	// Version растет при каждом изменении состояния.
	Version uint64
}

// Options настройки Hook.
type Options[T any] struct {
	// Name попадает в логи.
	Name string
	// RequireViewer запрещает обращаться к шлюзу без пользователя.
	RequireViewer bool
	// OnChange вызывается после каждого изменения состояния вне внутренних блокировок.
	// Вызовы могут приходить из горутин шлюза.
	OnChange func(State[T])
}

// Hook связывает Source с локальным состоянием.
type Hook[T any] struct {
	source Source[T]
	opts   Options[T]

	mu         sync.Mutex
	generation uint64
	state      State[T]
	dispose    func()
}

// New создает Hook. До первого Subscribe состояние пустое и не в загрузке.
func New[T any](source Source[T], opts Options[T]) *Hook[T] {
	return &Hook[T]{
		source: source,
		opts:   opts,
		state:  State[T]{Items: []T{}},
	}
}

// Snapshot возвращает копию текущего состояния.
func (h *Hook[T]) Snapshot() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copyState()
}

func (h *Hook[T]) copyState() State[T] {
	s := h.state
	s.Items = slices.Clone(h.state.Items)
	if s.Items == nil {
		s.Items = []T{}
	}
	return s
}

// Subscribe освобождает текущую подписку и открывает новую для scope.
// Без пользователя при RequireViewer состояние становится пустым, а шлюз не вызывается.
func (h *Hook[T]) Subscribe(ctx context.Context, scope Scope) {
	log := logger.Log(ctx).With(zap.String("subscription", h.opts.Name))

	h.mu.Lock()
	prev := h.dispose
	h.dispose = nil
	h.generation++
	gen := h.generation

	skip := h.opts.RequireViewer && !scope.Authenticated()
	h.state.Items = []T{}
	h.state.Scope = scope
	h.state.Loading = !skip
	if skip {
		h.state.Err = nil
	}
	h.state.Version++
	changed := h.copyState()
	h.mu.Unlock()

	if prev != nil {
		prev()
	}
	h.notify(changed)

	if skip {
		log.Debug(ctx, LogNoViewer)
		return
	}

	log.Debug(ctx, LogSubscribing, zap.Bool("privileged", scope.Privileged))
	unsubscribe, err := h.source(ctx, scope, h.onNext(ctx, gen), h.onError(ctx, gen))

	var dispose func()
	if unsubscribe != nil {
		dispose = sync.OnceFunc(unsubscribe)
	}

	h.mu.Lock()
	if gen != h.generation {
		h.mu.Unlock()
		if dispose != nil {
			dispose()
		}
		return
	}
	if err != nil {
		h.state.Err = err
		h.state.Loading = false
		h.state.Version++
		changed = h.copyState()
		h.mu.Unlock()

		if dispose != nil {
			dispose()
		}
		log.Warn(ctx, LogSubscribeFailed, zap.Error(err))
		h.notify(changed)
		return
	}
	h.dispose = dispose
	h.mu.Unlock()
}

// Close освобождает текущую подписку. Поздние обратные вызовы после Close отбрасываются.
// Повторный вызов ничего не делает.
func (h *Hook[T]) Close() {
	h.mu.Lock()
	prev := h.dispose
	h.dispose = nil
	h.generation++
	wasLoading := h.state.Loading
	h.state.Loading = false
	if wasLoading {
		h.state.Version++
	}
	changed := h.copyState()
	h.mu.Unlock()

	if prev != nil {
		prev()
	}
	if wasLoading {
		h.notify(changed)
	}
}

func (h *Hook[T]) onNext(ctx context.Context, gen uint64) func([]T) {
	return func(items []T) {
		h.mu.Lock()
		if gen != h.generation {
			h.mu.Unlock()
			logger.Log(ctx).Debug(ctx, LogStaleDropped, zap.String("subscription", h.opts.Name))
			return
		}
		h.state.Items = slices.Clone(items)
		h.state.Loading = false
		h.state.Err = nil
		h.state.Version++
		changed := h.copyState()
		h.mu.Unlock()

		h.notify(changed)
	}
}

func (h *Hook[T]) onError(ctx context.Context, gen uint64) func(error) {
	return func(err error) {
		h.mu.Lock()
		if gen != h.generation {
			h.mu.Unlock()
			logger.Log(ctx).Debug(ctx, LogStaleDropped, zap.String("subscription", h.opts.Name))
			return
		}
		h.state.Err = err
		h.state.Loading = false
		h.state.Version++
		changed := h.copyState()
		h.mu.Unlock()

		logger.Log(ctx).Warn(ctx, LogSubscriptionError, zap.String("subscription", h.opts.Name), zap.Error(err))
		h.notify(changed)
	}
}

func (h *Hook[T]) notify(s State[T]) {
	if h.opts.OnChange != nil {
		h.opts.OnChange(s)
	}
}
