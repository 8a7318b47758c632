package broadcast

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/racesim-manager-go/log"
)

// BroadcastServer distributes published messages to all subscribers.
// Each subscriber channel holds at most one message. If a subscriber is slow,
// an undelivered message is replaced by the newer one, so subscribers always
// get the latest state but may miss intermediate ones.
type BroadcastServer[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Publish(msg T)
	Close()
}

type broadcastServer[T any] struct {
	name           string
	source         chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	replayLatest   bool
	latest         *T
	numRcv         atomic.Int64
	numSnd         atomic.Int64
	numSkip        atomic.Int64
	numListener    atomic.Int64
	l              *log.Logger
}

type Option[T any] func(*broadcastServer[T])

// WithReplayLatest sends the most recently published message to new subscribers
func WithReplayLatest[T any]() Option[T] {
	return func(b *broadcastServer[T]) {
		b.replayLatest = true
	}
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(b *broadcastServer[T]) {
		b.l = l
	}
}

func NewBroadcastServer[T any](name string, opts ...Option[T]) BroadcastServer[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &broadcastServer[T]{
		name:           name,
		source:         make(chan T, 16),
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		l:              log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.setupMetrics()
	go b.serve()
	return b
}

// Subscribe returns a closed channel if the server is already closed
func (b *broadcastServer[T]) Subscribe() <-chan T {
	ch := make(chan T, 1)
	select {
	case b.addListener <- ch:
	case <-b.ctx.Done():
		close(ch)
	}
	return ch
}

func (b *broadcastServer[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.ctx.Done():
	}
}

// Publish hands msg to the server. Messages published after Close are dropped.
func (b *broadcastServer[T]) Publish(msg T) {
	select {
	case b.source <- msg:
	case <-b.ctx.Done():
	}
}

func (b *broadcastServer[T]) Close() {
	b.cancel()
	<-b.done
	b.l.Debug("broadcast server closed",
		log.String("name", b.name),
		log.Int64("rcv", b.numRcv.Load()),
		log.Int64("snd", b.numSnd.Load()),
		log.Int64("skip", b.numSkip.Load()))
}

func (b *broadcastServer[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter("rsm.broadcast")
	register := func(metricName, desc string, value *atomic.Int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(value.Load(),
					metric.WithAttributes(attribute.String("name", b.name)))
				return nil
			})); err != nil {
			b.l.Warn("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	for _, d := range []struct {
		name  string
		desc  string
		value *atomic.Int64
	}{
		{"rsm.broadcast.rcv", "Number of received messages", &b.numRcv},
		{"rsm.broadcast.snd", "Number of sent messages", &b.numSnd},
		{"rsm.broadcast.skip", "Number of replaced messages", &b.numSkip},
		{"rsm.broadcast.listener", "Number of listeners", &b.numListener},
	} {
		register(d.name, d.desc, d.value)
	}
}

func (b *broadcastServer[T]) serve() {
	defer func() {
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.numListener.Store(0)
		close(b.done)
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			b.listeners = append(b.listeners, ch)
			b.numListener.Store(int64(len(b.listeners)))
			if b.replayLatest && b.latest != nil {
				b.offer(ch, *b.latest)
			}
		case ch := <-b.removeListener:
			for i, listener := range b.listeners {
				if listener == ch {
					b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
					close(listener)
					break
				}
			}
			b.numListener.Store(int64(len(b.listeners)))
		case msg := <-b.source:
			b.numRcv.Add(1)
			b.latest = &msg
			for _, listener := range b.listeners {
				b.offer(listener, msg)
			}
		}
	}
}

// offer delivers msg without blocking. A message still waiting in the
// listener's buffer is replaced.
func (b *broadcastServer[T]) offer(listener chan T, msg T) {
	select {
	case listener <- msg:
		b.numSnd.Add(1)
		return
	default:
	}
	select {
	case <-listener:
		b.numSkip.Add(1)
	default:
	}
	select {
	case listener <- msg:
		b.numSnd.Add(1)
	default:
		b.numSkip.Add(1)
	}
}
