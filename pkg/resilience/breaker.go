package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

// BreakerState состояние Breaker.
type BreakerState int

const (
	// StateClosed вызовы проходят.
	StateClosed BreakerState = iota
	// StateOpen вызовы отклоняются до истечения Cooldown.
	StateOpen
	// StateHalfOpen пропускаются пробные вызовы.
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

const (
	LogBreakerTripped  = "breaker tripped"
	LogBreakerReset    = "breaker reset"
	LogBreakerProbe    = "breaker allowing probe"
	LogBreakerRejected = "breaker rejected call"
)

// ErrBreakerOpen возвращается, пока Breaker открыт.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerConfig настройки Breaker.
type BreakerConfig struct {
	// FailureThreshold подряд идущих ошибок, после которых Breaker открывается.
	FailureThreshold int
	// Cooldown время в открытом состоянии до первой пробы.
	Cooldown time.Duration
	// SuccessThreshold успешных проб, после которых Breaker закрывается.
	SuccessThreshold int
}

// DefaultBreakerConfig возвращает конфигурацию по умолчанию.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Cooldown:         10 * time.Second,
		SuccessThreshold: 1,
	}
}

// Breaker отклоняет вызовы к недоступной зависимости, пока она не восстановится.
type Breaker struct {
	name   string
	config BreakerConfig
	now    func() time.Time

	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

// NewBreaker создает закрытый Breaker.
func NewBreaker(name string, config BreakerConfig) *Breaker {
	return newBreaker(name, config, time.Now)
}

func newBreaker(name string, config BreakerConfig, now func() time.Time) *Breaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 1
	}
	return &Breaker{name: name, config: config, now: now}
}

// Execute вызывает fn, если Breaker пропускает вызов, и учитывает результат.
// Отмена ctx не считается отказом зависимости.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !b.allow(ctx) {
		return ErrBreakerOpen
	}
	err := fn(ctx)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	b.record(ctx, err)
	return err
}

// State возвращает текущее состояние.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	log := logger.Log(ctx).With(zap.String("breaker", b.name))

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			log.Debug(ctx, LogBreakerRejected)
			return false
		}
		b.state = StateHalfOpen
		b.successes = 0
		log.Info(ctx, LogBreakerProbe)
		return true
	default:
		return true
	}
}

func (b *Breaker) record(ctx context.Context, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	log := logger.Log(ctx).With(zap.String("breaker", b.name))

	if err != nil {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
			if b.state != StateOpen {
				log.Warn(ctx, LogBreakerTripped, zap.Int("failures", b.failures), zap.Error(err))
			}
			b.state = StateOpen
			b.openedAt = b.now()
			b.successes = 0
		}
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
			log.Info(ctx, LogBreakerReset)
		}
	default:
		b.failures = 0
	}
}
