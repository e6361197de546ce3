package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/logging"
)

type querySource interface {
	Descriptor() domain.CatalogQuery
	Subscribe(fn func(domain.CatalogQuery)) func()
}

// Orchestrator is the consumer-side wiring that turns descriptor changes
// into catalog fetches. Each change starts its own fetch and nothing is
// cancelled; ordering is left to the cache's stale-response guard.
type Orchestrator struct {
	cache   *Cache
	source  querySource
	timeout time.Duration
	logger  logrus.FieldLogger

	mu          sync.Mutex
	idle        *sync.Cond
	inflight    int
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

func NewOrchestrator(cache *Cache, source querySource, timeout time.Duration, logger logrus.FieldLogger) *Orchestrator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	o := &Orchestrator{cache: cache, source: source, timeout: timeout, logger: logging.OrDiscard(logger)}
	o.idle = sync.NewCond(&o.mu)
	return o
}

// Start subscribes to the query source and issues the initial fetch.
// Calling Start twice is a no-op.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsubscribe != nil {
		return
	}
	o.ctx, o.cancel = context.WithCancel(ctx)
	o.unsubscribe = o.source.Subscribe(o.dispatch)
	o.spawn(o.source.Descriptor())
}

// Stop unsubscribes, aborts fetches still in flight and waits for them.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
		o.cancel()
	}
	o.mu.Unlock()
	o.Wait()
}

// Wait blocks until no fetch is in flight. Fetches started while waiting
// extend the wait.
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for o.inflight > 0 {
		o.idle.Wait()
	}
}

func (o *Orchestrator) dispatch(q domain.CatalogQuery) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsubscribe == nil {
		return
	}
	o.spawn(q)
}

// spawn must be called with o.mu held.
func (o *Orchestrator) spawn(q domain.CatalogQuery) {
	o.inflight++
	ctx := o.ctx
	go func() {
		defer o.done()
		fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		if _, err := o.cache.Fetch(fetchCtx, q); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
			o.logger.WithError(err).WithField("revision", q.Revision).Warn("catalog orchestrator: fetch failed")
		}
	}()
}

func (o *Orchestrator) done() {
	o.mu.Lock()
	o.inflight--
	if o.inflight == 0 {
		o.idle.Broadcast()
	}
	o.mu.Unlock()
}
